package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/solutions/mock-cube/internal/common/utils"
	model "github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/solutions/mock-cube/internal/service/db"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/qiniu/x/xlog"
)

const (
	ExportFormatJSON = "json"
	ExportFormatPDF  = "pdf"
)

type ExportApiHandler struct {
	Session   SessionInterface
	Analytics *db.AnalyticsService
	sessions  *SessionApiHandler
}

func NewExportApiHandler(conf utils.Config) *ExportApiHandler {
	h := new(ExportApiHandler)
	session, err := db.NewSessionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	response, err := db.NewResponseService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	question, err := db.NewQuestionService(*conf.Mongo, nil)
	if err != nil {
		panic(err)
	}
	h.Session = session
	h.Analytics = db.NewAnalyticsService(response, question, nil)
	h.sessions = NewSessionApiHandler(conf)
	return h
}

// ExportReport 导出练习报告，format=json|pdf，默认json。
func (h *ExportApiHandler) ExportReport(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	requestID := xl.ReqId
	userID := c.GetString(model.UserIDContextKey)
	sessionID := c.Param("sessionId")

	session, err := h.Session.GetSessionByID(xl, sessionID)
	if err != nil {
		responseErr := model.NewResponseErrorNoSuchSession()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	if session.Creator != userID {
		responseErr := model.NewResponseErrorUnauthorized()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	analytics, err := h.Analytics.SessionAnalytics(xl, sessionID)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}
	feedback, err := h.Analytics.SessionFeedback(xl, session)
	if err != nil {
		responseErr := model.NewResponseErrorInternal()
		resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
		return
	}

	format := c.DefaultQuery("format", ExportFormatJSON)
	switch format {
	case ExportFormatPDF:
		content, err := h.renderPDF(session, analytics, feedback)
		if err != nil {
			xl.Errorf("failed to render pdf report of session %s, error %v", sessionID, err)
			responseErr := model.NewResponseErrorInternal()
			resp := model.NewFailResponse(*responseErr).WithRequestID(requestID)
			c.JSON(http.StatusOK, resp)
			return
		}
		fileName := fmt.Sprintf("practice-report-%s.pdf", sessionID)
		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
		c.Data(http.StatusOK, "application/pdf", content)
	default:
		report := model.ExportReportResponse{
			Session:   *h.sessions.makeGetSessionResponse(session),
			Analytics: *analytics,
			Items:     feedback.Items,
			ExportAt:  time.Now().Unix(),
		}
		resp := model.NewSuccessResponse(report).WithRequestID(requestID)
		c.JSON(http.StatusOK, resp)
	}
}

// renderPDF 生成报告PDF。标准字体不含CJK字形，非ASCII内容按cp1252近似转写。
func (h *ExportApiHandler) renderPDF(session *model.SessionDo, analytics *model.AnalyticsResponse, feedback *model.FeedbackResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Practice Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Title: %s", session.Title)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Type: %s    Difficulty: %s", session.Type, session.Difficulty))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Questions: %d    Scored: %d", analytics.ResponseCount, analytics.ScoredCount))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Total score: %.1f", analytics.TotalScore))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Avg answer time: %.0fs    Avg thinking time: %.0fs",
		analytics.AvgDuration, analytics.AvgThinking))
	pdf.Ln(10)

	if len(analytics.CategoryScores) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Scores by category")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, cs := range analytics.CategoryScores {
			pdf.Cell(0, 6, tr(fmt.Sprintf("%s: %.1f (%d answered)", cs.Category, cs.Score, cs.Count)))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Feedback")
	pdf.Ln(9)
	for _, item := range feedback.Items {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Q%d. %s", item.QuestionIndex+1, item.QuestionText)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, fmt.Sprintf("Score: %.1f", item.Score))
		pdf.Ln(6)
		for _, criterion := range item.CriteriaScores {
			pdf.Cell(0, 6, tr(fmt.Sprintf("  - %s: %.1f", criterion.Name, criterion.Score)))
			pdf.Ln(6)
		}
		if item.Feedback != "" {
			pdf.MultiCell(0, 6, tr(item.Feedback), "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
