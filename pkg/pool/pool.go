// Package pool содержит типизированную обёртку над sync.Pool.
package pool

import "sync"

// Resetter — объект, который умеет возвращаться в исходное состояние перед повторным использованием.
type Resetter interface {
	Reset()
}

// Pool — типизированный пул объектов. Put сбрасывает объект через Reset.
type Pool[T Resetter] struct {
	p sync.Pool
}

// New создаёт пул, использующий newFn для создания новых объектов.
func New[T Resetter](newFn func() T) *Pool[T] {
	return &Pool[T]{
		p: sync.Pool{New: func() any { return newFn() }},
	}
}

// Get возвращает объект из пула или создаёт новый.
func (p *Pool[T]) Get() T {
	return p.p.Get().(T)
}

// Put сбрасывает объект и возвращает его в пул.
func (p *Pool[T]) Put(x T) {
	x.Reset()
	p.p.Put(x)
}
