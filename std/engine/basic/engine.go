// Package basic gives a default implementation of the Engine interface.
// It talks to a single forwarder through one face.
package basic

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
	sig "github.com/named-data/ndn-cpp-sub004/std/security/signer"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
	"github.com/named-data/ndn-cpp-sub004/std/utils"
)

// TimeoutMargin delays the timeout of an expressed Interest past its lifetime,
// so a Data arriving right at the deadline still wins.
const TimeoutMargin = 10 * time.Millisecond

// CommandLifetime is the InterestLifetime of management commands.
const CommandLifetime = 1 * time.Second

type pendInt struct {
	callback      ndn.ExpressCallbackFunc
	deadline      time.Time
	canBePrefix   bool
	impSha256     []byte
	timeoutCancel func() error
}

type pitEntry = []*pendInt

type Engine struct {
	face  ndn.Face
	timer ndn.Timer

	wireFormat spec.WireFormat

	// fib contains the attached Interest handlers.
	fib *NameTrie[ndn.InterestHandler]
	// pit contains pending outgoing Interests.
	pit *NameTrie[pitEntry]

	fibLock sync.Mutex
	pitLock sync.Mutex

	// cmdSigner signs management commands.
	cmdSigner ndn.Signer
	// cmdValidator checks the replies to management commands.
	cmdValidator ndn.Validator

	// inQueue is the incoming packet queue.
	// The face will be blocked when the queue is full.
	inQueue chan []byte
	// taskQueue is the task queue for the main goroutine.
	taskQueue chan func()
	// close is the channel to signal the main goroutine to stop.
	close chan struct{}
	running atomic.Bool
}

// NewEngine creates an engine on top of face. Nothing happens until Start.
func NewEngine(face ndn.Face, timer ndn.Timer) *Engine {
	if face == nil || timer == nil {
		return nil
	}
	return &Engine{
		face:       face,
		timer:      timer,
		wireFormat: spec.DefaultWireFormat(),

		fib: NewNameTrie[ndn.InterestHandler](),
		pit: NewNameTrie[pitEntry](),

		cmdSigner:    sig.NewSha256Signer(),
		cmdValidator: func(*ndn.Data, []byte) bool { return true },

		inQueue:   make(chan []byte, 256),
		taskQueue: make(chan func(), 512),
		close:     make(chan struct{}),
	}
}

func (e *Engine) String() string {
	return "basic-engine"
}

func (e *Engine) Timer() ndn.Timer {
	return e.timer
}

func (e *Engine) Face() ndn.Face {
	return e.face
}

// WireFormat is the packet format used to encode and decode Interests.
func (e *Engine) WireFormat() spec.WireFormat {
	return e.wireFormat
}

// SetWireFormat changes the packet format. Call it before Start.
func (e *Engine) SetWireFormat(f spec.WireFormat) {
	e.wireFormat = f
}

// SetCmdSec sets the signer of management commands and the validator of their replies.
func (e *Engine) SetCmdSec(signer ndn.Signer, validator ndn.Validator) {
	e.cmdSigner = signer
	e.cmdValidator = validator
}

func (e *Engine) AttachHandler(prefix enc.Name, handler ndn.InterestHandler) error {
	if handler == nil {
		return ndn.ErrInvalidValue{Item: "handler", Value: nil}
	}
	e.fibLock.Lock()
	defer e.fibLock.Unlock()
	n := e.fib.MatchAlways(prefix)
	if n.Value() != nil {
		return fmt.Errorf("%w: %s", ndn.ErrMultipleHandlers, prefix)
	}
	n.SetValue(handler)
	return nil
}

func (e *Engine) DetachHandler(prefix enc.Name) error {
	e.fibLock.Lock()
	defer e.fibLock.Unlock()

	n := e.fib.ExactMatch(prefix)
	if n == nil || n.Value() == nil {
		return ndn.ErrInvalidValue{Item: "prefix", Value: prefix}
	}
	n.SetValue(nil)
	// handlers attached to shorter prefixes must survive
	n.PruneIf(func(h ndn.InterestHandler) bool { return h == nil })
	return nil
}

func (e *Engine) onPacket(frame []byte) {
	if log.HasTrace() {
		log.Trace(e, "Received packet bytes", "wire", hex.EncodeToString(frame))
	}

	typ, err := spec.PacketType(frame)
	if err != nil {
		log.Error(e, "Failed to parse packet", "err", err)
		return
	}

	wire := frame
	var pitToken []byte
	var nack optional.Optional[uint64]
	if typ == spec.TypeLpPacket {
		lp, err := spec.DecodeLpPacket(frame)
		if err != nil {
			log.Warn(e, "Failed to parse LpPacket - DROP", "err", err)
			return
		}
		if lp.Fragment == nil {
			// IDLE packet
			return
		}
		wire = lp.Fragment
		pitToken = lp.PitToken
		nack = lp.Nack
		if typ, err = spec.PacketType(wire); err != nil {
			log.Error(e, "Failed to parse packet in LpPacket", "err", err)
			return
		}
	}

	switch typ {
	case spec.TypeInterest:
		interest, sp, err := e.wireFormat.DecodeInterest(wire)
		if err != nil {
			log.Error(e, "Failed to parse Interest", "err", err)
			return
		}
		if reason, ok := nack.Get(); ok {
			log.Trace(e, "Nack received", "reason", reason, "name", interest.Name)
			e.onNack(interest.Name, reason)
			return
		}
		log.Trace(e, "Interest received", "name", interest.Name)
		e.onInterest(ndn.InterestHandlerArgs{
			Interest:    interest,
			RawInterest: wire,
			SigCovered:  wire[sp.Begin:sp.End],
			PitToken:    pitToken,
		})
	case spec.TypeData:
		if nack.IsSet() {
			log.Error(e, "Nack received for non-Interest - DROP")
			return
		}
		data, sp, err := e.wireFormat.DecodeData(wire)
		if err != nil {
			log.Error(e, "Failed to parse Data", "err", err)
			return
		}
		log.Trace(e, "Data received", "name", data.Name)
		e.onData(data, wire, wire[sp.Begin:sp.End])
	default:
		log.Warn(e, "Unknown packet type - DROP", "type", typ)
	}
}

func (e *Engine) onInterest(args ndn.InterestHandlerArgs) {
	name := args.Interest.Name
	args.Deadline = e.timer.Now().Add(args.Interest.LifetimeOrDefault())

	// Longest prefix match
	handler := func() ndn.InterestHandler {
		e.fibLock.Lock()
		defer e.fibLock.Unlock()
		for n := e.fib.PrefixMatch(name); n != nil; n = n.Parent() {
			if h := n.Value(); h != nil {
				return h
			}
		}
		return nil
	}()
	if handler == nil {
		log.Warn(e, "No handler for interest", "name", name)
		return
	}

	args.Reply = e.newDataReplyFunc(args.PitToken)

	// The handler should create a goroutine if it is going to block.
	handler(args)
}

func (e *Engine) newDataReplyFunc(pitToken []byte) ndn.ReplyFunc {
	return func(wire []byte) error {
		if wire == nil {
			return nil
		}
		if !e.IsRunning() || !e.face.IsRunning() {
			return ndn.ErrFaceDown
		}
		if pitToken != nil {
			wire = spec.EncodeLpPacket(&spec.LpPacket{
				PitToken: pitToken,
				Fragment: wire,
			})
		}
		return e.face.Send(wire)
	}
}

func (e *Engine) onDataMatch(data *ndn.Data, raw []byte) pitEntry {
	e.pitLock.Lock()
	defer e.pitLock.Unlock()

	n := e.pit.PrefixMatch(data.Name)
	if n == e.pit && len(n.Value()) == 0 {
		log.Warn(e, "Received data for an unknown interest - DROP", "name", data.Name)
		return nil
	}

	var digest []byte
	ret := make(pitEntry, 0, 4)
	for cur := n; cur != nil; cur = cur.Parent() {
		entries := cur.Value()
		for i := 0; i < len(entries); i++ {
			entry := entries[i]

			// MustBeFresh is left to the forwarder.
			if cur.Depth() < len(data.Name) && !entry.canBePrefix {
				continue
			}
			if entry.impSha256 != nil {
				if digest == nil {
					h := sha256.Sum256(raw)
					digest = h[:]
				}
				// the digest component follows the full Data name
				if cur.Depth() != len(data.Name) || !bytes.Equal(entry.impSha256, digest) {
					continue
				}
			}

			entries[i] = entries[len(entries)-1]
			entries = entries[:len(entries)-1]
			i--
			ret = append(ret, entry)
		}
		cur.SetValue(entries)
	}

	n.PruneIf(func(lst []*pendInt) bool { return len(lst) == 0 })
	return ret
}

func (e *Engine) onData(data *ndn.Data, raw []byte, sigCovered []byte) {
	for _, entry := range e.onDataMatch(data, raw) {
		entry.timeoutCancel()
		entry.callback(ndn.ExpressCallbackArgs{
			Result:     ndn.InterestResultData,
			Data:       data,
			RawData:    raw,
			SigCovered: sigCovered,
			NackReason: spec.NackReasonNone,
		})
	}
}

func (e *Engine) onNack(name enc.Name, reason uint64) {
	entries := func() []*pendInt {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		// an Interest with an implicit digest is kept under the Data name
		if l := len(name); l > 0 && name[l-1].Typ == enc.TypeImplicitSha256DigestComponent {
			name = name[:l-1]
		}
		n := e.pit.ExactMatch(name)
		if n == nil || len(n.Value()) == 0 {
			log.Warn(e, "Received Nack for an unknown interest - DROP", "name", name)
			return nil
		}
		ret := n.Value()
		n.SetValue(nil)
		n.PruneIf(func(lst []*pendInt) bool { return len(lst) == 0 })
		return ret
	}()

	for _, entry := range entries {
		entry.timeoutCancel()
		entry.callback(ndn.ExpressCallbackArgs{
			Result:     ndn.InterestResultNack,
			NackReason: reason,
		})
	}
}

func (e *Engine) onExpressTimeout(n *NameTrie[pitEntry]) {
	now := e.timer.Now()

	expired := func() []*pendInt {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		ret := make([]*pendInt, 0, 4)
		entries := n.Value()
		for i := 0; i < len(entries); i++ {
			entry := entries[i]
			if entry.deadline.After(now) {
				continue
			}
			entries[i] = entries[len(entries)-1]
			entries = entries[:len(entries)-1]
			i--
			ret = append(ret, entry)
		}

		n.SetValue(entries)
		n.PruneIf(func(lst []*pendInt) bool { return len(lst) == 0 })
		return ret
	}()

	for _, entry := range expired {
		entry.callback(ndn.ExpressCallbackArgs{
			Result:     ndn.InterestResultTimeout,
			NackReason: spec.NackReasonNone,
			Error:      ndn.ErrDeadlineExceed,
		})
	}
}

func (e *Engine) Start() error {
	if e.face.IsRunning() {
		return fmt.Errorf("face is already running")
	}

	e.face.OnPacket(func(frame []byte) {
		// the face may reuse its buffer
		frameCopy := make([]byte, len(frame))
		copy(frameCopy, frame)
		e.inQueue <- frameCopy
	})
	e.face.OnError(func(err error) {
		log.Error(e, "Error on face", "err", err, "face", e.face)
		e.Stop()
	})

	if err := e.face.Open(); err != nil {
		return err
	}

	e.running.Store(true)
	go func() {
		defer e.face.Close()
		defer e.running.Store(false)

		for {
			select {
			case frame := <-e.inQueue:
				e.onPacket(frame)
			case <-e.close:
				return
			case task := <-e.taskQueue:
				task()
			}
		}
	}()

	return nil
}

func (e *Engine) Stop() error {
	if !e.IsRunning() {
		return fmt.Errorf("engine is not running")
	}
	e.close <- struct{}{} // closes face too
	return nil
}

func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Express sends an Interest. A missing Nonce is filled in from the timer.
func (e *Engine) Express(interest *ndn.Interest, callback ndn.ExpressCallbackFunc) error {
	if interest == nil {
		return ndn.ErrInvalidValue{Item: "interest", Value: nil}
	}
	if !interest.Nonce.IsSet() {
		filled := *interest
		filled.Nonce = utils.ConvertNonce(e.timer.Nonce())
		interest = &filled
	}
	encoded, err := e.wireFormat.EncodeInterest(interest)
	if err != nil {
		return err
	}
	return e.expressEncoded(encoded, interest, callback)
}

func (e *Engine) expressEncoded(encoded *spec.Encoded, interest *ndn.Interest, callback ndn.ExpressCallbackFunc) error {
	if callback == nil {
		callback = func(ndn.ExpressCallbackArgs) {}
	}

	finalName := encoded.Name
	nodeName := finalName
	if len(finalName) == 0 {
		return ndn.ErrInvalidValue{Item: "finalName", Value: finalName}
	}

	var impSha256 []byte
	if last := finalName[len(finalName)-1]; last.Typ == enc.TypeImplicitSha256DigestComponent {
		impSha256 = last.Val
		nodeName = finalName[:len(finalName)-1]
	}

	lifetime := interest.LifetimeOrDefault()
	deadline := e.timer.Now().Add(lifetime)

	func() {
		e.pitLock.Lock()
		defer e.pitLock.Unlock()

		n := e.pit.MatchAlways(nodeName)
		entry := &pendInt{
			callback:    callback,
			deadline:    deadline,
			canBePrefix: interest.CanBePrefix,
			impSha256:   impSha256,
		}
		n.SetValue(append(n.Value(), entry))
		entry.timeoutCancel = e.timer.Schedule(lifetime+TimeoutMargin, func() {
			e.onExpressTimeout(n)
		})
	}()

	err := e.face.Send(encoded.Wire)
	if err != nil {
		log.Error(e, "Failed to send interest", "err", err)
		return err
	}
	log.Trace(e, "Interest sent", "name", finalName)
	return nil
}

// Put sends a Data wire to the forwarder.
func (e *Engine) Put(wire []byte) error {
	if !e.IsRunning() || !e.face.IsRunning() {
		return ndn.ErrFaceDown
	}
	return e.face.Send(wire)
}

// ExecMgmtCmd sends a signed command to the forwarder and waits for the reply.
// It blocks, so it must not be called from the engine goroutine.
func (e *Engine) ExecMgmtCmd(module string, cmd string, params *spec.ControlParameters) (*spec.ControlResponse, error) {
	scope := utils.If(e.face.IsLocal(), "localhost", "localhop")
	name := enc.Name{
		enc.NewStringComponent(enc.TypeGenericNameComponent, scope),
		enc.NewStringComponent(enc.TypeGenericNameComponent, "nfd"),
		enc.NewStringComponent(enc.TypeGenericNameComponent, module),
		enc.NewStringComponent(enc.TypeGenericNameComponent, cmd),
		enc.NewGenericComponent(params.Encode()),
	}
	interest := &ndn.Interest{
		Name:        name,
		MustBeFresh: true,
		Lifetime:    optional.Some(CommandLifetime),
		Nonce:       utils.ConvertNonce(e.timer.Nonce()),
	}
	encoded, err := e.wireFormat.MakeCommandInterest(interest, e.cmdSigner, e.timer.Now(), e.timer.Nonce())
	if err != nil {
		return nil, err
	}

	type mgmtResp struct {
		err error
		val *spec.ControlResponse
	}
	respCh := make(chan mgmtResp, 1)

	err = e.expressEncoded(encoded, interest, func(args ndn.ExpressCallbackArgs) {
		resp := mgmtResp{}
		defer func() { respCh <- resp }()

		switch args.Result {
		case ndn.InterestResultNack:
			resp.err = fmt.Errorf("nack received: %v", args.NackReason)
		case ndn.InterestResultTimeout:
			resp.err = ndn.ErrDeadlineExceed
		case ndn.InterestResultData:
			if !e.cmdValidator(args.Data, args.SigCovered) {
				resp.err = fmt.Errorf("command signature is not valid")
				return
			}
			ret, err := spec.DecodeControlResponse(args.Data.Content)
			if err != nil {
				resp.err = err
				return
			}
			resp.val = ret
			if ret.StatusCode != 200 {
				resp.err = fmt.Errorf("command failed due to error %d: %s", ret.StatusCode, ret.StatusText)
			}
		default:
			resp.err = fmt.Errorf("unknown result: %v", args.Result)
		}
	})
	if err != nil {
		return nil, err
	}

	resp := <-respCh
	return resp.val, resp.err
}

func (e *Engine) RegisterRoute(prefix enc.Name) error {
	_, err := e.ExecMgmtCmd("rib", "register", &spec.ControlParameters{Name: prefix})
	if err != nil {
		log.Error(e, "Failed to register prefix", "err", err, "name", prefix)
		return err
	}
	log.Debug(e, "Prefix registered", "name", prefix)
	return nil
}

func (e *Engine) UnregisterRoute(prefix enc.Name) error {
	_, err := e.ExecMgmtCmd("rib", "unregister", &spec.ControlParameters{Name: prefix})
	if err != nil {
		log.Error(e, "Failed to unregister prefix", "err", err, "name", prefix)
		return err
	}
	log.Debug(e, "Prefix unregistered", "name", prefix)
	return nil
}

func (e *Engine) Post(task func()) {
	select {
	case e.taskQueue <- task:
	default:
		// do not block if called from the main goroutine itself
		go func() { e.taskQueue <- task }()
	}
}
