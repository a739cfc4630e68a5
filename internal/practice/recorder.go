package practice

import (
	"context"
	"fmt"
	"sync"

	"github.com/qiniu/x/xlog"
)

// RecorderState 录制控制器状态。
type RecorderState int

const (
	StateIdle RecorderState = iota
	StateRequesting
	StateReady
	StateRecording
	StatePaused
	StateStopped
)

func (s RecorderState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateReady:
		return "ready"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// PermissionError 采集设备授权被拒绝。
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for %s: %v", e.Device, e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// ErrBadRecorderState 当前状态不允许该操作。
type ErrBadRecorderState struct {
	State RecorderState
	Op    string
}

func (e *ErrBadRecorderState) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}

// MediaSource 采集设备抽象。授权失败返回*PermissionError。
type MediaSource interface {
	Acquire(ctx context.Context, camera bool, microphone bool) error
	StartCapture() error
	PauseCapture() error
	ResumeCapture() error
	// StopCapture 结束采集并返回录制内容。
	StopCapture() ([]byte, error)
	Release()
}

// Recorder 录制控制器。
// 状态机：idle → requesting → ready → recording ⇄ paused → stopped。
// 授权失败退回idle，可重新初始化。
type Recorder struct {
	mu     sync.Mutex
	state  RecorderState
	source MediaSource
	xl     *xlog.Logger
}

func NewRecorder(source MediaSource) *Recorder {
	return &Recorder{
		state:  StateIdle,
		source: source,
		xl:     xlog.New("mock-cube-recorder"),
	}
}

// State 当前状态。
func (r *Recorder) State() RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Initialize 申请采集设备。成功后进入ready，授权失败退回idle。
func (r *Recorder) Initialize(ctx context.Context, camera bool, microphone bool) error {
	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		return &ErrBadRecorderState{State: state, Op: "initialize"}
	}
	r.state = StateRequesting
	r.mu.Unlock()

	err := r.source.Acquire(ctx, camera, microphone)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.xl.Infof("media source acquire failed, error %v", err)
		r.state = StateIdle
		return err
	}
	r.state = StateReady
	return nil
}

// Start 开始录制。仅ready状态可用。
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return &ErrBadRecorderState{State: r.state, Op: "start"}
	}
	if err := r.source.StartCapture(); err != nil {
		return err
	}
	r.state = StateRecording
	return nil
}

// Pause 暂停录制。非录制中为无效操作。
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		return &ErrBadRecorderState{State: r.state, Op: "pause"}
	}
	if err := r.source.PauseCapture(); err != nil {
		return err
	}
	r.state = StatePaused
	return nil
}

// Resume 恢复录制。
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePaused {
		return &ErrBadRecorderState{State: r.state, Op: "resume"}
	}
	if err := r.source.ResumeCapture(); err != nil {
		return err
	}
	r.state = StateRecording
	return nil
}

// Stop 结束录制并取回内容。录制中或暂停中均可停止。
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording && r.state != StatePaused {
		return nil, &ErrBadRecorderState{State: r.state, Op: "stop"}
	}
	data, err := r.source.StopCapture()
	if err != nil {
		return nil, err
	}
	r.state = StateStopped
	return data, nil
}

// Reset 停止后回到ready，准备录制下一题。设备不重新申请。
func (r *Recorder) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateStopped {
		return &ErrBadRecorderState{State: r.state, Op: "reset"}
	}
	r.state = StateReady
	return nil
}

// Teardown 释放采集设备，回到idle。任意状态可用。
func (r *Recorder) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateIdle {
		return
	}
	r.source.Release()
	r.state = StateIdle
}
