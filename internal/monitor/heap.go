package monitor

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// Источники данных о памяти.
const (
	HeapSourceRuntime = "runtime"
	HeapSourceProcess = "process"
	HeapSourceNone    = "none"
)

// HeapSizer сообщает текущий объём занятой памяти.
// Второе значение false означает, что платформа не даёт такой информации.
type HeapSizer interface {
	HeapBytes() (uint64, bool)
}

// RuntimeHeap отдаёт размер живой кучи Go (runtime.MemStats.HeapAlloc).
type RuntimeHeap struct{}

func (RuntimeHeap) HeapBytes() (uint64, bool) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc, true
}

// ProcessHeap отдаёт RSS текущего процесса через gopsutil.
type ProcessHeap struct {
	pid  int32
	once sync.Once
	proc *process.Process
	err  error
}

// NewProcessHeap создаёт ProcessHeap для текущего процесса.
func NewProcessHeap() *ProcessHeap {
	return &ProcessHeap{pid: int32(os.Getpid())}
}

func (p *ProcessHeap) HeapBytes() (uint64, bool) {
	p.once.Do(func() {
		p.proc, p.err = process.NewProcess(p.pid)
	})
	if p.err != nil {
		return 0, false
	}
	info, err := p.proc.MemoryInfo()
	if err != nil || info == nil {
		return 0, false
	}
	return info.RSS, true
}

// NoHeap — платформа без интроспекции памяти.
type NoHeap struct{}

func (NoHeap) HeapBytes() (uint64, bool) { return 0, false }

// HeapSizerFor возвращает HeapSizer по имени источника (runtime, process, none).
func HeapSizerFor(source string) (HeapSizer, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", HeapSourceRuntime:
		return RuntimeHeap{}, nil
	case HeapSourceProcess:
		return NewProcessHeap(), nil
	case HeapSourceNone:
		return NoHeap{}, nil
	default:
		return nil, fmt.Errorf("unknown heap source %q", source)
	}
}
