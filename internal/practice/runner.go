package practice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solutions/mock-cube/internal/protodef/model"
	"github.com/qiniu/x/xlog"
)

// ErrSubmitInFlight 上一次提交尚未返回。
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// ErrSessionFinished 会话已答完，不能继续提交。
var ErrSessionFinished = errors.New("session already finished")

// ErrNoRecorder 纯文字模式没有配置录制器。
var ErrNoRecorder = errors.New("no recorder configured for this session")

// SessionAPI 练习流程需要的服务端操作。
type SessionAPI interface {
	StartSession(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	PauseSession(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	ResumeSession(ctx context.Context, sessionID string) (*model.SessionResponse, error)
	NextQuestion(ctx context.Context, sessionID string) (*model.NextQuestionResponse, error)
	SubmitResponse(ctx context.Context, sessionID string, args *model.SubmitResponseArgs) (*model.SubmitResponseResponse, error)
	SubmitResponseWithMedia(ctx context.Context, sessionID string, args *model.SubmitResponseArgs,
		fileName string, media io.Reader) (*model.SubmitResponseResponse, error)
	HeartBeat(ctx context.Context, sessionID string) (int, error)
}

// Runner 练习流程编排。
// 串联取题、计时、录制与提交：提交成功后推进到下一题并重置题目内状态，
// 最后一题提交后进入完成流程而不再取题。
type Runner struct {
	mu sync.Mutex

	api       SessionAPI
	sessionID string
	timer     *PracticeTimer
	recorder  *Recorder

	current *model.NextQuestionResponse
	// draftID 本题草稿标识，提交重试时用于日志关联。
	draftID    string
	submitting bool
	finished   bool

	xl *xlog.Logger
}

func NewRunner(api SessionAPI, sessionID string, recorder *Recorder) *Runner {
	return &Runner{
		api:       api,
		sessionID: sessionID,
		timer:     NewPracticeTimer(),
		recorder:  recorder,
		xl:        xlog.New("mock-cube-runner"),
	}
}

// Begin 开始练习：流转会话状态、启动计时并取第一题。
func (r *Runner) Begin(ctx context.Context) error {
	_, err := r.api.StartSession(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.timer.Start()
	return r.fetchNextQuestion(ctx)
}

// CurrentQuestion 当前题目。没有进行中的题目时返回nil。
func (r *Runner) CurrentQuestion() *model.NextQuestionResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Finished 是否已答完全部题目。
func (r *Runner) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Timer 练习计时器读数入口。
func (r *Runner) Timer() *PracticeTimer {
	return r.timer
}

// StartAnswer 开始录制作答，思考用时定格。
func (r *Runner) StartAnswer() error {
	if r.recorder == nil {
		return ErrNoRecorder
	}
	if err := r.recorder.Start(); err != nil {
		return err
	}
	r.timer.MarkAnswerStarted()
	return nil
}

// Pause 暂停练习，计时与录制同步暂停。
func (r *Runner) Pause(ctx context.Context) error {
	_, err := r.api.PauseSession(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.timer.Pause()
	if r.recorder != nil && r.recorder.State() == StateRecording {
		if err := r.recorder.Pause(); err != nil {
			r.xl.Errorf("failed to pause recorder, error %v", err)
		}
	}
	return nil
}

// Resume 恢复练习。
func (r *Runner) Resume(ctx context.Context) error {
	_, err := r.api.ResumeSession(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.timer.Resume()
	if r.recorder != nil && r.recorder.State() == StatePaused {
		if err := r.recorder.Resume(); err != nil {
			r.xl.Errorf("failed to resume recorder, error %v", err)
		}
	}
	return nil
}

// SubmitText 提交文字回答并推进到下一题。
func (r *Runner) SubmitText(ctx context.Context, text string) (*model.SubmitResponseResponse, error) {
	args, err := r.beginSubmit()
	if err != nil {
		return nil, err
	}
	defer r.endSubmit()
	args.Text = text
	// 文字提交视为作答开始，思考用时到此为止。
	r.timer.MarkAnswerStarted()
	args.ThinkingSecond = r.timer.ThinkingSecond()

	result, err := r.api.SubmitResponse(ctx, r.sessionID, args)
	if err != nil {
		return nil, err
	}
	return result, r.advance(ctx, result)
}

// SubmitRecording 结束录制并提交，text可为空。
func (r *Runner) SubmitRecording(ctx context.Context, text string) (*model.SubmitResponseResponse, error) {
	if r.recorder == nil {
		return nil, ErrNoRecorder
	}
	args, err := r.beginSubmit()
	if err != nil {
		return nil, err
	}
	defer r.endSubmit()
	data, err := r.recorder.Stop()
	if err != nil {
		return nil, err
	}
	args.Text = text
	args.ThinkingSecond = r.timer.ThinkingSecond()

	fileName := args.QuestionId + "-" + r.currentDraftID() + ".webm"
	result, err := r.api.SubmitResponseWithMedia(ctx, r.sessionID, args, fileName, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return result, r.advance(ctx, result)
}

// beginSubmit 提交前检查：只允许一个在途提交，会话答完后拒绝。
func (r *Runner) beginSubmit() (*model.SubmitResponseArgs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return nil, ErrSessionFinished
	}
	if r.submitting {
		return nil, ErrSubmitInFlight
	}
	if r.current == nil {
		return nil, ErrSessionFinished
	}
	r.submitting = true
	return &model.SubmitResponseArgs{
		QuestionId:     r.current.Question.Id,
		QuestionIndex:  r.current.QuestionIndex,
		DurationSecond: r.timer.ElapsedSecond(),
	}, nil
}

func (r *Runner) endSubmit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitting = false
}

func (r *Runner) currentDraftID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draftID
}

// advance 提交成功后的推进。最后一题走完成流程，否则取下一题并重置题内状态。
func (r *Runner) advance(ctx context.Context, result *model.SubmitResponseResponse) error {
	if result.Completed {
		r.mu.Lock()
		r.finished = true
		r.current = nil
		r.mu.Unlock()
		r.timer.Stop()
		if r.recorder != nil {
			r.recorder.Teardown()
		}
		r.xl.Infof("session %s finished", r.sessionID)
		return nil
	}
	if r.recorder != nil && r.recorder.State() == StateStopped {
		if err := r.recorder.Reset(); err != nil {
			r.xl.Errorf("failed to reset recorder, error %v", err)
		}
	}
	return r.fetchNextQuestion(ctx)
}

func (r *Runner) fetchNextQuestion(ctx context.Context) error {
	question, err := r.api.NextQuestion(ctx, r.sessionID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.current = question
	r.draftID = uuid.NewString()
	r.mu.Unlock()
	r.timer.BeginQuestion()
	return nil
}

// RunHeartBeat 周期性上报心跳直到ctx取消。间隔以服务端返回为准。
func (r *Runner) RunHeartBeat(ctx context.Context) {
	interval := 30 * time.Second
	for {
		seconds, err := r.api.HeartBeat(ctx, r.sessionID)
		if err != nil {
			r.xl.Debugf("heartbeat of session %s failed, error %v", r.sessionID, err)
		} else if seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
