package core

import (
	"github.com/cheggaaa/pb/v3"
)

type progress interface {
	Increment()
	Finish()
}

type noProgress struct{}

func (noProgress) Increment() {}
func (noProgress) Finish()    {}

type barProgress struct {
	bar *pb.ProgressBar
}

func (p barProgress) Increment() { p.bar.Increment() }
func (p barProgress) Finish()    { p.bar.Finish() }

func newProgress(total int, enabled bool) progress {
	if !enabled {
		return noProgress{}
	}
	return barProgress{bar: pb.StartNew(total)}
}
