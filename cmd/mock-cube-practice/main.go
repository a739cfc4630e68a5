package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/qiniu/x/xlog"
	"github.com/solutions/mock-cube/internal/client"
	"github.com/solutions/mock-cube/internal/practice"
)

// 命令行练习入口。文字模式作答，答完全部题目后拉取练习报告。
func main() {
	var (
		baseURL   string
		token     string
		sessionID string
	)
	flag.StringVar(&baseURL, "server", "http://127.0.0.1:8080", "mock-cube server address")
	flag.StringVar(&token, "token", "", "login token")
	flag.StringVar(&sessionID, "session", "", "session id to practice")
	flag.Parse()

	xl := xlog.New("mock-cube-practice")
	if token == "" || sessionID == "" {
		xl.Error("both -token and -session are required")
		flag.Usage()
		os.Exit(1)
	}

	gateway := client.NewGateway(baseURL, token, nil)
	runner := practice.NewRunner(gateway, sessionID, nil)
	ctx := context.Background()

	if err := runner.Begin(ctx); err != nil {
		xl.Errorf("failed to start session %s, error %v", sessionID, err)
		os.Exit(1)
	}
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go runner.RunHeartBeat(heartbeatCtx)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for !runner.Finished() {
		question := runner.CurrentQuestion()
		fmt.Printf("\n[%d/%d] %s\n> ", question.QuestionIndex+1, question.QuestionIndex+question.Remain, question.Question.Text)
		if !scanner.Scan() {
			xl.Info("input closed, leaving session paused")
			if err := runner.Pause(ctx); err != nil {
				xl.Errorf("failed to pause session, error %v", err)
			}
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			fmt.Println("answer cannot be empty")
			continue
		}
		result, err := runner.SubmitText(ctx, text)
		if err != nil {
			xl.Errorf("failed to submit answer, error %v", err)
			continue
		}
		if result.Completed {
			break
		}
	}
	cancel()

	fmt.Println("\nall questions answered, generating report...")
	printReport(ctx, gateway, sessionID, xl)
}

func printReport(ctx context.Context, gateway *client.Gateway, sessionID string, xl *xlog.Logger) {
	analytics, err := gateway.GetAnalytics(ctx, sessionID)
	if err != nil {
		xl.Errorf("failed to fetch analytics of session %s, error %v", sessionID, err)
		return
	}
	fmt.Printf("total score: %.1f (%d/%d scored)\n", analytics.TotalScore, analytics.ScoredCount, analytics.ResponseCount)
	fmt.Printf("avg duration: %.0fs, avg thinking: %.0fs\n", analytics.AvgDuration, analytics.AvgThinking)
	for _, category := range analytics.CategoryScores {
		fmt.Printf("  %s: %.1f\n", category.Category, category.Score)
	}

	feedback, err := gateway.GetFeedback(ctx, sessionID)
	if err != nil {
		xl.Errorf("failed to fetch feedback of session %s, error %v", sessionID, err)
		return
	}
	if !feedback.Ready {
		// 评分还在进行中，反馈稍后再查。
		fmt.Println("\nfeedback is still being generated, check back later")
		return
	}
	fmt.Println("\nper-question feedback:")
	for _, item := range feedback.Items {
		fmt.Printf("  [%d] %s\n      score %.1f: %s\n", item.QuestionIndex+1, item.QuestionText, item.Score, item.Feedback)
	}
}
