package output

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tanq16/drainzo/internal/utils"
	"golang.org/x/term"
)

// Manager owns the live progress region at the bottom of the terminal:
// one optional batch counter line and the current file's progress. Notices
// and finished files are printed above the region so they persist across
// redraws. Pause/Resume hand the terminal to a subprocess (aria2c native
// mode) and take it back.
type Manager struct {
	mu          sync.RWMutex
	numLines    int
	doneCh      chan struct{}
	pauseCh     chan bool
	isPaused    bool
	displayTick time.Duration
	displayWg   sync.WaitGroup

	batchDone  int
	batchTotal int
	task       *taskState
}

type taskState struct {
	name      string
	completed int64
	total     int64
	desc      string
	start     time.Time
}

func NewManager() *Manager {
	return &Manager{
		doneCh:      make(chan struct{}),
		pauseCh:     make(chan bool),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !m.isPaused {
					m.updateDisplay()
				}
			case pauseState := <-m.pauseCh:
				m.isPaused = pauseState
			case <-m.doneCh:
				m.clearRegion()
				return
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
}

// Pause clears the progress region and suspends redraws, leaving the
// terminal to whoever asked (aria2c in native mode).
func (m *Manager) Pause() {
	if !m.isPaused {
		m.clearRegion()
		m.pauseCh <- true
	}
}

func (m *Manager) Resume() {
	if m.isPaused {
		m.pauseCh <- false
	}
}

// Notify prints a persistent line above the progress region.
func (m *Manager) Notify(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eraseLocked()
	fmt.Printf("  %s %s\n", warningStyle.Render(StyleSymbols["warning"]), debugStyle.Render(message))
}

func (m *Manager) SetBatchTotal(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchTotal = n
}

func (m *Manager) AdvanceBatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchDone++
}

// StartTask begins tracking one file transfer and returns its sink.
func (m *Manager) StartTask(name string, size int64) *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task = &taskState{name: name, total: size, start: time.Now()}
	return &Task{manager: m}
}

// FinishTask prints the file's persistent result line and drops the
// per-file progress.
func (m *Manager) FinishTask(success bool, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return
	}
	elapsed := time.Since(m.task.start).Round(time.Second)
	m.eraseLocked()
	if success {
		fmt.Printf("  %s %s %s\n", successStyle.Render(StyleSymbols["pass"]), debugStyle.Render(elapsed.String()), successStyle.Render(message))
	} else {
		fmt.Printf("  %s %s %s\n", errorStyle.Render(StyleSymbols["fail"]), debugStyle.Render(elapsed.String()), errorStyle.Render(message))
	}
	m.task = nil
}

// Task is the ProgressSink handed to the download orchestrator.
type Task struct {
	manager *Manager
}

func (t *Task) Report(completed, total int64) {
	m := t.manager
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return
	}
	m.task.completed = completed
	if total > 0 {
		m.task.total = total
	}
}

func (t *Task) SetDescription(text string) {
	m := t.manager
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task == nil {
		return
	}
	m.task.desc = text
}

func (m *Manager) clearRegion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eraseLocked()
}

// eraseLocked moves the cursor above the progress region and wipes it.
// Callers must hold the mutex.
func (m *Manager) eraseLocked() {
	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
		m.numLines = 0
	}
}

func (m *Manager) updateDisplay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eraseLocked()

	lineCount := 0
	if m.batchTotal > 1 {
		fmt.Printf("  %s %s\n",
			pendingStyle.Render(fmt.Sprintf("Batch (%d/%d)", m.batchDone, m.batchTotal)),
			PrintProgressBar(int64(m.batchDone), int64(m.batchTotal), barWidth()))
		lineCount++
	}
	if m.task != nil {
		fmt.Printf("  %s %s\n", pendingStyle.Render(StyleSymbols["pending"]), pendingStyle.Render(m.task.name))
		lineCount++
		detail := fmt.Sprintf("%s %s %s / %s %s %s",
			PrintProgressBar(m.task.completed, m.task.total, barWidth()),
			StyleSymbols["bullet"],
			utils.FormatBytes(uint64(max(m.task.completed, 0))),
			totalDisplay(m.task.total),
			StyleSymbols["bullet"],
			statusDisplay(m.task))
		fmt.Printf("      %s\n", debugStyle.Render(detail))
		lineCount++
	}
	m.numLines = lineCount
}

func statusDisplay(t *taskState) string {
	if t.desc != "" {
		return t.desc
	}
	elapsed := time.Since(t.start).Seconds()
	return utils.FormatSpeed(t.completed, elapsed)
}

func totalDisplay(total int64) string {
	if total <= 0 {
		return "?"
	}
	return utils.FormatBytes(uint64(total))
}

func barWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 30
	}
	return max(10, min(30, width/3))
}
