package practice

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/solutions/mock-cube/internal/protodef/model"

	"github.com/stretchr/testify/assert"
)

// fakeSessionAPI 测试用服务端。按题目列表依次出题，提交即推进。
type fakeSessionAPI struct {
	mu sync.Mutex

	questions []model.QuestionDo
	index     int

	started      bool
	paused       bool
	submitCalls  int
	mediaCalls   int
	lastArgs     *model.SubmitResponseArgs
	lastFileName string
	// blockSubmit 不为nil时，提交会阻塞直到该通道关闭。
	blockSubmit   chan struct{}
	submitEntered chan struct{}
}

func (f *fakeSessionAPI) StartSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return &model.SessionResponse{ID: sessionID, StatusCode: int(model.SessionStatusCodeInProgress)}, nil
}

func (f *fakeSessionAPI) PauseSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return &model.SessionResponse{ID: sessionID, StatusCode: int(model.SessionStatusCodePaused)}, nil
}

func (f *fakeSessionAPI) ResumeSession(ctx context.Context, sessionID string) (*model.SessionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return &model.SessionResponse{ID: sessionID, StatusCode: int(model.SessionStatusCodeInProgress)}, nil
}

func (f *fakeSessionAPI) NextQuestion(ctx context.Context, sessionID string) (*model.NextQuestionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	question := f.questions[f.index]
	return &model.NextQuestionResponse{
		Question:      question,
		QuestionIndex: f.index,
		Remain:        len(f.questions) - f.index,
	}, nil
}

func (f *fakeSessionAPI) SubmitResponse(ctx context.Context, sessionID string,
	args *model.SubmitResponseArgs) (*model.SubmitResponseResponse, error) {
	if f.blockSubmit != nil {
		select {
		case f.submitEntered <- struct{}{}:
		default:
		}
		<-f.blockSubmit
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastArgs = args
	f.index++
	return &model.SubmitResponseResponse{
		ResponseId:           "response-1",
		CurrentQuestionIndex: f.index,
		Completed:            f.index >= len(f.questions),
	}, nil
}

func (f *fakeSessionAPI) SubmitResponseWithMedia(ctx context.Context, sessionID string,
	args *model.SubmitResponseArgs, fileName string, media io.Reader) (*model.SubmitResponseResponse, error) {
	f.mu.Lock()
	f.mediaCalls++
	f.lastFileName = fileName
	f.mu.Unlock()
	return f.SubmitResponse(ctx, sessionID, args)
}

func (f *fakeSessionAPI) HeartBeat(ctx context.Context, sessionID string) (int, error) {
	return 30, nil
}

func newFakeSessionAPI(questionCount int) *fakeSessionAPI {
	api := &fakeSessionAPI{}
	for i := 0; i < questionCount; i++ {
		api.questions = append(api.questions, model.QuestionDo{
			Id:   "question-" + string(rune('a'+i)),
			Text: "tell me about a project",
		})
	}
	return api
}

func TestRunnerBeginFetchesFirstQuestion(t *testing.T) {
	api := newFakeSessionAPI(2)
	runner := NewRunner(api, "session-1", nil)

	assert.NoError(t, runner.Begin(context.Background()))
	assert.True(t, api.started)
	question := runner.CurrentQuestion()
	assert.NotNil(t, question)
	assert.Equal(t, 0, question.QuestionIndex)
	assert.False(t, runner.Finished())
}

func TestRunnerSubmitAdvancesToNextQuestion(t *testing.T) {
	api := newFakeSessionAPI(3)
	runner := NewRunner(api, "session-1", nil)
	assert.NoError(t, runner.Begin(context.Background()))

	result, err := runner.SubmitText(context.Background(), "my answer")
	assert.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, 1, runner.CurrentQuestion().QuestionIndex)
	assert.Equal(t, 1, api.submitCalls)
	assert.Equal(t, "my answer", api.lastArgs.Text)
}

func TestRunnerLastQuestionFinishesSession(t *testing.T) {
	api := newFakeSessionAPI(1)
	runner := NewRunner(api, "session-1", nil)
	assert.NoError(t, runner.Begin(context.Background()))

	result, err := runner.SubmitText(context.Background(), "final answer")
	assert.NoError(t, err)
	assert.True(t, result.Completed)
	assert.True(t, runner.Finished())
	assert.Nil(t, runner.CurrentQuestion())

	// 答完后不能再提交。
	_, err = runner.SubmitText(context.Background(), "late answer")
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestRunnerTenQuestionSessionCompletes(t *testing.T) {
	api := newFakeSessionAPI(10)
	runner := NewRunner(api, "session-1", nil)
	assert.NoError(t, runner.Begin(context.Background()))

	for i := 0; i < 10; i++ {
		assert.Equal(t, i, runner.CurrentQuestion().QuestionIndex)
		result, err := runner.SubmitText(context.Background(), "answer")
		assert.NoError(t, err)
		assert.Equal(t, i == 9, result.Completed)
	}
	// 第10题提交后直接完成，不再取题。
	assert.True(t, runner.Finished())
	assert.Equal(t, 10, api.submitCalls)
}

func TestRunnerRejectsConcurrentSubmit(t *testing.T) {
	api := newFakeSessionAPI(2)
	api.blockSubmit = make(chan struct{})
	api.submitEntered = make(chan struct{}, 1)
	runner := NewRunner(api, "session-1", nil)
	assert.NoError(t, runner.Begin(context.Background()))

	firstDone := make(chan error, 1)
	go func() {
		_, err := runner.SubmitText(context.Background(), "slow answer")
		firstDone <- err
	}()
	// 等第一次提交进入在途状态。
	<-api.submitEntered

	_, err := runner.SubmitText(context.Background(), "second answer")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(api.blockSubmit)
	assert.NoError(t, <-firstDone)
	assert.Equal(t, 1, api.submitCalls)
}

func TestRunnerSubmitRecording(t *testing.T) {
	api := newFakeSessionAPI(2)
	source := &fakeMediaSource{data: []byte("video")}
	recorder := NewRecorder(source)
	assert.NoError(t, recorder.Initialize(context.Background(), true, true))

	runner := NewRunner(api, "session-1", recorder)
	assert.NoError(t, runner.Begin(context.Background()))
	assert.NoError(t, runner.StartAnswer())
	assert.Equal(t, StateRecording, recorder.State())

	result, err := runner.SubmitRecording(context.Background(), "")
	assert.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, 1, api.mediaCalls)
	assert.Contains(t, api.lastFileName, ".webm")
	// 下一题开始前录制器已复位。
	assert.Equal(t, StateReady, recorder.State())
	assert.NoError(t, runner.StartAnswer())
}

func TestRunnerFinishReleasesRecorder(t *testing.T) {
	api := newFakeSessionAPI(1)
	source := &fakeMediaSource{data: []byte("video")}
	recorder := NewRecorder(source)
	assert.NoError(t, recorder.Initialize(context.Background(), true, true))

	runner := NewRunner(api, "session-1", recorder)
	assert.NoError(t, runner.Begin(context.Background()))
	assert.NoError(t, runner.StartAnswer())

	result, err := runner.SubmitRecording(context.Background(), "")
	assert.NoError(t, err)
	assert.True(t, result.Completed)
	assert.True(t, source.released)
	assert.Equal(t, StateIdle, recorder.State())
}

func TestRunnerTextModeWithoutRecorder(t *testing.T) {
	api := newFakeSessionAPI(2)
	runner := NewRunner(api, "session-1", nil)
	assert.NoError(t, runner.Begin(context.Background()))

	// 纯文字模式下录制入口返回错误而不是崩溃。
	assert.ErrorIs(t, runner.StartAnswer(), ErrNoRecorder)
	_, err := runner.SubmitRecording(context.Background(), "answer")
	assert.ErrorIs(t, err, ErrNoRecorder)

	result, err := runner.SubmitText(context.Background(), "answer")
	assert.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, 1, runner.CurrentQuestion().QuestionIndex)
}

func TestRunnerPauseAndResume(t *testing.T) {
	api := newFakeSessionAPI(2)
	source := &fakeMediaSource{}
	recorder := NewRecorder(source)
	assert.NoError(t, recorder.Initialize(context.Background(), true, true))

	runner := NewRunner(api, "session-1", recorder)
	assert.NoError(t, runner.Begin(context.Background()))
	assert.NoError(t, runner.StartAnswer())

	assert.NoError(t, runner.Pause(context.Background()))
	assert.True(t, api.paused)
	assert.Equal(t, StatePaused, recorder.State())

	assert.NoError(t, runner.Resume(context.Background()))
	assert.False(t, api.paused)
	assert.Equal(t, StateRecording, recorder.State())
}
