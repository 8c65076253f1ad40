package psync

import (
	"errors"
	"fmt"
	"sync"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// ErrValidation is reported when a segment fails validation.
var ErrValidation = errors.New("segment validation failed")

// SegmentFetcher retrieves objects published by SegmentPublisher.
type SegmentFetcher struct {
	engine ndn.Engine

	// Lifetime of each segment Interest.
	Lifetime time.Duration
	// MaxRetries is the number of re-expressions after a timeout.
	MaxRetries int
}

func NewSegmentFetcher(engine ndn.Engine) *SegmentFetcher {
	return &SegmentFetcher{
		engine:     engine,
		Lifetime:   time.Second,
		MaxRetries: 3,
	}
}

// FetchArgs describe one segmented fetch.
type FetchArgs struct {
	// Name is the object name, without version and segment.
	Name enc.Name
	// MustBeFresh is set on the first Interest.
	MustBeFresh bool
	// Lifetime overrides the fetcher Interest lifetime when non-zero.
	Lifetime time.Duration
	// Validator checks every segment; nil accepts all.
	Validator ndn.Validator
	// OnComplete receives the reassembled content.
	OnComplete func(content []byte)
	// OnError receives the first error; the fetch stops there.
	OnError func(err error)
}

// Fetch is one running segmented fetch.
type Fetch struct {
	fetcher *SegmentFetcher
	args    FetchArgs

	mutex   sync.Mutex
	stopped bool
	// versioned name, set after the first segment
	base     enc.Name
	lastSeg  int
	segments map[int][]byte
	retries  int
}

func (f *Fetch) String() string {
	return fmt.Sprintf("psync-fetch (%s)", f.args.Name)
}

// Fetch starts fetching args.Name. The first Interest can be answered by any
// segment of the latest version; the remaining segments follow one at a time.
// An error expressing the first Interest is returned, and no callback is made.
func (s *SegmentFetcher) Fetch(args FetchArgs) (*Fetch, error) {
	if args.Lifetime == 0 {
		args.Lifetime = s.Lifetime
	}
	f := &Fetch{
		fetcher:  s,
		args:     args,
		lastSeg:  -1,
		segments: make(map[int][]byte),
	}
	if err := f.express(f.firstInterest()); err != nil {
		// the engine may still time the Interest out later
		f.finish()
		return nil, err
	}
	return f, nil
}

// Stop abandons the fetch. No callback is made after Stop returns.
func (f *Fetch) Stop() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.stopped = true
}

func (f *Fetch) firstInterest() *ndn.Interest {
	interest := &ndn.Interest{
		Name:        f.args.Name,
		CanBePrefix: true,
		MustBeFresh: f.args.MustBeFresh,
	}
	interest.Lifetime.Set(f.args.Lifetime)
	return interest
}

func (f *Fetch) segmentInterest(seg int) *ndn.Interest {
	interest := &ndn.Interest{
		Name: f.base.Append(enc.NewSegmentComponent(uint64(seg))),
	}
	interest.Lifetime.Set(f.args.Lifetime)
	return interest
}

func (f *Fetch) express(interest *ndn.Interest) error {
	return f.fetcher.engine.Express(interest, func(args ndn.ExpressCallbackArgs) {
		f.onResult(interest, args)
	})
}

func (f *Fetch) onResult(interest *ndn.Interest, args ndn.ExpressCallbackArgs) {
	content, next, err := f.handleResult(interest, args)
	switch {
	case err != nil:
		if f.args.OnError != nil {
			f.args.OnError(&ErrFetch{Name: f.args.Name, Err: err})
		}
	case content != nil:
		if f.args.OnComplete != nil {
			f.args.OnComplete(content)
		}
	case next != nil:
		if err := f.express(next); err != nil && f.finish() && f.args.OnError != nil {
			f.args.OnError(&ErrFetch{Name: f.args.Name, Err: err})
		}
	}
}

// finish marks the fetch done and reports whether it was still running.
func (f *Fetch) finish() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.stopped {
		return false
	}
	f.stopped = true
	return true
}

// handleResult returns the complete content, or the next Interest to
// express, or an error. All zero means nothing to do.
func (f *Fetch) handleResult(interest *ndn.Interest, args ndn.ExpressCallbackArgs) (
	content []byte, next *ndn.Interest, err error,
) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.stopped {
		return nil, nil, nil
	}
	fail := func(err error) ([]byte, *ndn.Interest, error) {
		f.stopped = true
		return nil, nil, err
	}

	switch args.Result {
	case ndn.InterestResultData:
	case ndn.InterestResultTimeout:
		if f.retries >= f.fetcher.MaxRetries {
			return fail(ndn.ErrDeadlineExceed)
		}
		f.retries++
		log.Debug(f, "Segment Interest timed out, retrying", "name", interest.Name, "retry", f.retries)
		retry := *interest
		retry.Nonce = optional.None[uint32]()
		return nil, &retry, nil
	case ndn.InterestResultNack:
		return fail(fmt.Errorf("%w: reason %d", ErrFetchNack, args.NackReason))
	default:
		return fail(args.Error)
	}

	data := args.Data
	if f.args.Validator != nil && !f.args.Validator(data, args.SigCovered) {
		return fail(ErrValidation)
	}

	// <name>/<version>/<segment>
	if len(data.Name) != len(f.args.Name)+2 {
		return fail(ndn.ErrInvalidValue{Item: "segment name", Value: data.Name})
	}
	seg, err := data.Name.At(-1).ToSegment()
	if err != nil {
		return fail(err)
	}
	if f.base == nil {
		f.base = data.Name.Prefix(-1).Clone()
		f.lastSeg = int(seg)
		if final, ok := data.MetaInfo.FinalBlockID.Get(); ok {
			last, err := final.ToSegment()
			if err != nil {
				return fail(err)
			}
			f.lastSeg = int(last)
		}
	} else if !f.base.IsPrefix(data.Name) {
		return fail(ndn.ErrInvalidValue{Item: "segment version", Value: data.Name})
	}
	if int(seg) > f.lastSeg {
		return fail(ndn.ErrInvalidValue{Item: "segment number", Value: seg})
	}

	f.retries = 0
	f.segments[int(seg)] = data.Content
	for i := 0; i <= f.lastSeg; i++ {
		if _, ok := f.segments[i]; !ok {
			return nil, f.segmentInterest(i), nil
		}
	}

	f.stopped = true
	size := 0
	for _, c := range f.segments {
		size += len(c)
	}
	content = make([]byte, 0, size)
	for i := 0; i <= f.lastSeg; i++ {
		content = append(content, f.segments[i]...)
	}
	return content, nil, nil
}
