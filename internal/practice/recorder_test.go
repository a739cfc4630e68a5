package practice

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeMediaSource 测试用采集设备。
type fakeMediaSource struct {
	denyPermission bool
	acquired       bool
	capturing      bool
	released       bool
	data           []byte
}

func (f *fakeMediaSource) Acquire(ctx context.Context, camera bool, microphone bool) error {
	if f.denyPermission {
		return &PermissionError{Device: "camera", Err: fmt.Errorf("denied by user")}
	}
	f.acquired = true
	return nil
}

func (f *fakeMediaSource) StartCapture() error {
	f.capturing = true
	return nil
}

func (f *fakeMediaSource) PauseCapture() error {
	f.capturing = false
	return nil
}

func (f *fakeMediaSource) ResumeCapture() error {
	f.capturing = true
	return nil
}

func (f *fakeMediaSource) StopCapture() ([]byte, error) {
	f.capturing = false
	return f.data, nil
}

func (f *fakeMediaSource) Release() {
	f.released = true
}

func TestRecorderLifecycle(t *testing.T) {
	source := &fakeMediaSource{data: []byte("recording")}
	r := NewRecorder(source)
	assert.Equal(t, StateIdle, r.State())

	err := r.Initialize(context.Background(), true, true)
	assert.NoError(t, err)
	assert.Equal(t, StateReady, r.State())

	assert.NoError(t, r.Start())
	assert.Equal(t, StateRecording, r.State())

	assert.NoError(t, r.Pause())
	assert.Equal(t, StatePaused, r.State())

	assert.NoError(t, r.Resume())
	assert.Equal(t, StateRecording, r.State())

	data, err := r.Stop()
	assert.NoError(t, err)
	assert.Equal(t, []byte("recording"), data)
	assert.Equal(t, StateStopped, r.State())
}

func TestRecorderPermissionDeniedFallsBackToIdle(t *testing.T) {
	source := &fakeMediaSource{denyPermission: true}
	r := NewRecorder(source)
	err := r.Initialize(context.Background(), true, false)
	assert.Error(t, err)
	var permissionErr *PermissionError
	assert.ErrorAs(t, err, &permissionErr)
	assert.Equal(t, StateIdle, r.State())

	// 授权失败后可以重试。
	source.denyPermission = false
	assert.NoError(t, r.Initialize(context.Background(), true, false))
	assert.Equal(t, StateReady, r.State())
}

func TestRecorderOutOfOrderOperations(t *testing.T) {
	source := &fakeMediaSource{}
	r := NewRecorder(source)

	var stateErr *ErrBadRecorderState
	assert.ErrorAs(t, r.Start(), &stateErr)
	assert.ErrorAs(t, r.Pause(), &stateErr)
	assert.ErrorAs(t, r.Resume(), &stateErr)
	_, err := r.Stop()
	assert.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StateIdle, r.State())

	assert.NoError(t, r.Initialize(context.Background(), false, true))
	// ready状态不允许pause/resume。
	assert.Error(t, r.Pause())
	assert.Error(t, r.Resume())
	assert.Equal(t, StateReady, r.State())
}

func TestRecorderResetForNextQuestion(t *testing.T) {
	source := &fakeMediaSource{data: []byte("q1")}
	r := NewRecorder(source)
	assert.NoError(t, r.Initialize(context.Background(), true, true))
	assert.NoError(t, r.Start())
	_, err := r.Stop()
	assert.NoError(t, err)

	assert.NoError(t, r.Reset())
	assert.Equal(t, StateReady, r.State())
	assert.NoError(t, r.Start())
}

func TestRecorderTeardownReleasesDevice(t *testing.T) {
	source := &fakeMediaSource{}
	r := NewRecorder(source)
	assert.NoError(t, r.Initialize(context.Background(), true, true))
	r.Teardown()
	assert.True(t, source.released)
	assert.Equal(t, StateIdle, r.State())
	// 幂等。
	r.Teardown()
}
