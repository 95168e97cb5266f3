// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tessgrid

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Task names reported to a Monitor, in the order a run begins them.
const (
	TaskExtract    = "Extracting samples"
	TaskTessellate = "Interpolating (tessellating) grid"
	TaskFill       = "Filling grid"
)

// Monitor receives progress reports and is polled for cancellation.
type Monitor interface {
	// BeginTask starts a task of total units of work.
	BeginTask(name string, total int)
	// Worked reports n more units of the current task as done.
	Worked(n int)
	IsCanceled() bool
	// Done is called once when the run returns.
	Done()
}

// NopMonitor ignores progress and is never canceled.
type NopMonitor struct{}

func (NopMonitor) BeginTask(string, int) {}
func (NopMonitor) Worked(int)            {}
func (NopMonitor) IsCanceled() bool      { return false }
func (NopMonitor) Done()                 {}

const progressSteps = 10

type contextMonitor struct {
	ctx context.Context
	log logrus.FieldLogger

	mu     sync.Mutex
	task   string
	total  int
	worked int
	step   int
}

// ContextMonitor returns a Monitor that is canceled with ctx and logs task
// boundaries and every tenth of progress to log.
func ContextMonitor(ctx context.Context, log logrus.FieldLogger) Monitor {
	return &contextMonitor{ctx: ctx, log: log}
}

func (m *contextMonitor) BeginTask(name string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.task, m.total, m.worked, m.step = name, total, 0, 0
	m.log.WithFields(logrus.Fields{"task": name, "total": total}).Info("task started")
}

func (m *contextMonitor) Worked(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worked += n
	if m.total <= 0 {
		return
	}
	if step := m.worked * progressSteps / m.total; step > m.step {
		m.step = step
		m.log.WithFields(logrus.Fields{
			"task":   m.task,
			"worked": m.worked,
			"total":  m.total,
		}).Debugf("%d%% done", 100*step/progressSteps)
	}
}

func (m *contextMonitor) IsCanceled() bool {
	return m.ctx.Err() != nil
}

func (m *contextMonitor) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := m.log.WithField("task", m.task)
	if err := m.ctx.Err(); err != nil {
		entry.WithError(err).Info("run canceled")
		return
	}
	entry.Info("run finished")
}
