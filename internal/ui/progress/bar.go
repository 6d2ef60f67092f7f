package progress

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/rbee/internal/ui/styles"
)

// barUpdate is sent to the model when a repository is done.
type barUpdate struct {
	done int
	path string
}

// Bar shows how many repositories have been dispatched on.
type Bar struct {
	w        io.Writer
	program  *tea.Program
	updateCh chan barUpdate
	finished chan struct{}

	mu      sync.Mutex
	running bool
	total   int
	done    int
	last    string
}

type barModel struct {
	bar      progress.Model
	total    int
	done     int
	last     string
	updateCh chan barUpdate
}

func (m barModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m barModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updateCh
		if !ok {
			return tea.Quit()
		}
		return update
	}
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case barUpdate:
		m.done = msg.done
		m.last = msg.path
		return m, m.waitForUpdate()
	default:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		return m, cmd
	}
}

func (m barModel) View() tea.View {
	if m.total == 0 {
		return tea.NewView("")
	}
	percent := float64(m.done) / float64(m.total)

	// ████████░░░░░░░░ 3/8 assignment-3
	line := fmt.Sprintf("%s %d/%d", m.bar.ViewAs(percent), m.done, m.total)
	if m.last != "" {
		line += " " + styles.MutedStyle.Render(filepath.Base(m.last))
	}
	return tea.NewView(line)
}

// NewBar creates a bar for total repositories drawing to w.
func NewBar(w io.Writer, total int) *Bar {
	return &Bar{
		w:        w,
		updateCh: make(chan barUpdate, 16),
		finished: make(chan struct{}),
		total:    total,
	}
}

// Start begins drawing. Calling it twice is a no-op.
func (b *Bar) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}

	model := barModel{
		bar: progress.New(
			progress.WithWidth(30),
			progress.WithoutPercentage(),
			progress.WithColors(styles.Primary, styles.Success),
		),
		total:    b.total,
		done:     b.done,
		last:     b.last,
		updateCh: b.updateCh,
	}

	b.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithInput(nil), tea.WithOutput(b.w))
	b.running = true

	go func() {
		_, _ = b.program.Run()
		close(b.finished)
	}()
}

// Report records that done of total repositories are finished, path being
// the latest. Its signature matches hooks.Progress.
func (b *Bar) Report(done, total int, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	if !b.running {
		b.done, b.last = done, path
		return
	}

	// Drops the update when the renderer lags behind; the next one catches up.
	select {
	case b.updateCh <- barUpdate{done: done, path: path}:
	default:
	}
}

// Done returns the last reported count.
func (b *Bar) Done() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Total returns the number of repositories.
func (b *Bar) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Stop stops drawing and clears the line.
func (b *Bar) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.updateCh)
	b.mu.Unlock()

	b.program.Quit()
	waitOrTimeout(b.finished)
	clearLine(b.w)
}
