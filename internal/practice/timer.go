package practice

import (
	"sync"
	"time"
)

// PracticeTimer 练习计时器。
// 同时维护两个读数：会话累计用时，与当前题目的思考用时。
// 思考用时从题目展示开始计数，到首次开始作答为止；暂停期间两者都不走表，
// 恢复后思考用时不会重新累计。
type PracticeTimer struct {
	mu sync.Mutex

	elapsedSecond  int
	thinkingSecond int
	// thinkingActive 当前题目处于思考阶段。
	thinkingActive bool
	paused         bool
	stopped        bool

	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

func NewPracticeTimer() *PracticeTimer {
	return &PracticeTimer{
		interval: time.Second,
		done:     make(chan struct{}),
	}
}

// Start 启动计时循环。重复调用无效。
func (t *PracticeTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ticker != nil || t.stopped {
		return
	}
	t.ticker = time.NewTicker(t.interval)
	go t.loop()
}

func (t *PracticeTimer) loop() {
	for {
		select {
		case <-t.ticker.C:
			t.tick()
		case <-t.done:
			return
		}
	}
}

// tick 走一秒表。
func (t *PracticeTimer) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || t.stopped {
		return
	}
	t.elapsedSecond++
	if t.thinkingActive {
		t.thinkingSecond++
	}
}

// BeginQuestion 进入新题目，思考用时清零并重新开始计数。
func (t *PracticeTimer) BeginQuestion() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thinkingSecond = 0
	t.thinkingActive = true
}

// MarkAnswerStarted 作答开始，思考用时定格。之后暂停/恢复不再累计。
func (t *PracticeTimer) MarkAnswerStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.thinkingActive = false
}

// Pause 暂停计时。
func (t *PracticeTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
}

// Resume 恢复计时。
func (t *PracticeTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
}

// ElapsedSecond 会话累计用时。
func (t *PracticeTimer) ElapsedSecond() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedSecond
}

// ThinkingSecond 当前题目的思考用时。
func (t *PracticeTimer) ThinkingSecond() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.thinkingSecond
}

// Stop 停止计时并释放ticker。停止后计时器不能复用。
func (t *PracticeTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.ticker != nil {
		t.ticker.Stop()
	}
	close(t.done)
}
