package basic_test

import (
	"crypto/sha256"
	"testing"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	basic_engine "github.com/named-data/ndn-cpp-sub004/std/engine/basic"
	"github.com/named-data/ndn-cpp-sub004/std/engine/face"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
	sig "github.com/named-data/ndn-cpp-sub004/std/security/signer"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

// testSigner writes SignatureType 200 and an empty SignatureValue.
type testSigner struct{}

func (testSigner) Type() ndn.SigType                   { return 200 }
func (testSigner) KeyName() enc.Name                   { return nil }
func (testSigner) EstimateSize() uint                  { return 0 }
func (testSigner) Sign(covered []byte) ([]byte, error) { return []byte{}, nil }

func executeTest(t *testing.T, main func(*face.DummyFace, *basic_engine.Engine, *basic_engine.DummyTimer)) {
	tu.SetT(t)

	face := face.NewDummyFace()
	timer := basic_engine.NewDummyTimer()
	engine := basic_engine.NewEngine(face, timer)
	require.NoError(t, engine.Start())

	main(face, engine, timer)

	require.NoError(t, engine.Stop())
}

func TestEngineStart(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		require.True(t, engine.IsRunning())
		require.Error(t, engine.Start())
	})
}

func TestConsumerBasic(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		name := tu.NoErr(enc.NameFromStr("/example/testApp/randomData/t=1570430517101"))
		interest := &ndn.Interest{
			Name:        name,
			MustBeFresh: true,
			Lifetime:    optional.Some(6 * time.Second),
		}
		err := engine.Express(interest, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultData, args.Result)
			require.True(t, args.Data.Name.Equal(name))
			require.Equal(t, 1*time.Second, args.Data.Freshness())
			require.Equal(t, []byte("Hello, world!"), args.Data.Content)
		})
		require.NoError(t, err)
		// the Nonce comes from the timer
		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte(
			"\x056\x07(\x08\x07example\x08\x07testApp\x08\nrandomData"+
				"\x38\x08\x00\x00\x01m\xa4\xf3\xffm\x12\x00\x0a\x04\x01\x02\x03\x04\x0c\x02\x17p"),
			buf)
		timer.MoveForward(500 * time.Millisecond)
		require.NoError(t, face.FeedPacket([]byte(
			"\x06I\x07(\x08\x07example\x08\x07testApp\x08\nrandomData"+
				"\x38\x08\x00\x00\x01m\xa4\xf3\xffm\x14\x07\x18\x01\x00\x19\x02\x03\xe8"+
				"\x15\rHello, world!\x16\x03\x1b\x01\x00\x17\x00",
		)))

		require.Equal(t, 1, hitCnt)
		require.Equal(t, 0, timer.Pending())
	})
}

func TestInterestNack(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		interest := &ndn.Interest{
			Name:        tu.NoErr(enc.NameFromStr("/localhost/nfd/faces/events")),
			MustBeFresh: true,
			CanBePrefix: true,
			Lifetime:    optional.Some(1 * time.Second),
		}
		err := engine.Express(interest, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultNack, args.Result)
			require.Equal(t, spec.NackReasonNoRoute, args.NackReason)
		})
		require.NoError(t, err)
		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte(
			"\x05\x2f\x07\x1f\x08\tlocalhost\x08\x03nfd\x08\x05faces\x08\x06events"+
				"\x21\x00\x12\x00\x0a\x04\x01\x02\x03\x04\x0c\x02\x03\xe8"),
			buf)
		timer.MoveForward(500 * time.Millisecond)
		require.NoError(t, face.FeedPacket(append([]byte(
			"\x64\x3c\xfd\x03\x20\x05\xfd\x03\x21\x01\x96\x50\x31"), buf...)))

		require.Equal(t, 1, hitCnt)

		// no timeout after the Nack
		timer.MoveForward(2 * time.Second)
		require.Equal(t, 1, hitCnt)
	})
}

func TestInterestTimeout(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		name := tu.NoErr(enc.NameFromStr("/not/important"))
		interest := &ndn.Interest{
			Name:     name,
			Lifetime: optional.Some(10 * time.Millisecond),
			Nonce:    optional.Some(uint32(0xaabbccdd)),
		}
		err := engine.Express(interest, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultTimeout, args.Result)
			require.ErrorIs(t, args.Error, ndn.ErrDeadlineExceed)
		})
		require.NoError(t, err)
		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte(
			"\x05\x1b\x07\x10\x08\x03not\x08\timportant\x0a\x04\xaa\xbb\xcc\xdd\x0c\x01\x0a"), buf)
		timer.MoveForward(50 * time.Millisecond)
		require.Equal(t, 1, hitCnt)

		data := &ndn.Data{Name: name, Content: []byte("\x0a")}
		wire, err := spec.DefaultWireFormat().MakeData(data, sig.NewSha256Signer())
		require.NoError(t, err)
		require.NoError(t, face.FeedPacket(wire.Wire))

		require.Equal(t, 1, hitCnt)
	})
}

func TestInterestCanBePrefix(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		name1 := tu.NoErr(enc.NameFromStr("/not"))
		name2 := tu.NoErr(enc.NameFromStr("/not/important"))
		interest1 := &ndn.Interest{
			Name:     name1,
			Lifetime: optional.Some(5 * time.Millisecond),
		}
		interest2 := &ndn.Interest{
			Name:        name1,
			Lifetime:    optional.Some(5 * time.Millisecond),
			CanBePrefix: true,
		}
		interest3 := &ndn.Interest{
			Name:     name2,
			Lifetime: optional.Some(5 * time.Millisecond),
		}

		dataWire := []byte("\x06\x24\x07\x10\x08\x03not\x08\timportant\x14\x03\x18\x01\x00\x15\x04test" +
			"\x16\x03\x1b\x01\x00\x17\x00")

		err := engine.Express(interest1, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultTimeout, args.Result)
		})
		require.NoError(t, err)

		err = engine.Express(interest2, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultData, args.Result)
			require.True(t, args.Data.Name.Equal(name2))
			require.Equal(t, []byte("test"), args.Data.Content)
			require.Equal(t, dataWire, args.RawData)
		})
		require.NoError(t, err)

		err = engine.Express(interest3, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultData, args.Result)
			require.True(t, args.Data.Name.Equal(name2))
			require.Equal(t, dataWire[2:36], args.SigCovered)
		})
		require.NoError(t, err)

		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte("\x05\x10\x07\x05\x08\x03not\x0a\x04\x01\x02\x03\x04\x0c\x01\x05"), buf)
		buf = tu.NoErr(face.Consume())
		require.Equal(t, []byte("\x05\x12\x07\x05\x08\x03not\x21\x00\x0a\x04\x01\x02\x03\x04\x0c\x01\x05"), buf)
		buf = tu.NoErr(face.Consume())
		require.Equal(t, []byte("\x05\x1b\x07\x10\x08\x03not\x08\timportant\x0a\x04\x01\x02\x03\x04\x0c\x01\x05"), buf)

		timer.MoveForward(4 * time.Millisecond)
		require.NoError(t, face.FeedPacket(dataWire))
		require.Equal(t, 2, hitCnt)
		timer.MoveForward(1 * time.Second)
		require.Equal(t, 3, hitCnt)
	})
}

func TestImplicitSha256(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		dataWire := []byte("\x06\x1a\x07\x06\x08\x04test\x14\x03\x18\x01\x00\x15\x04test\x16\x03\x1b\x01\x00\x17\x00")
		digest := sha256.Sum256(dataWire)
		prefix := tu.NoErr(enc.NameFromStr("/test"))

		interest1 := &ndn.Interest{
			Name:     prefix.Append(enc.NewBytesComponent(enc.TypeImplicitSha256DigestComponent, make([]byte, 32))),
			Lifetime: optional.Some(5 * time.Millisecond),
		}
		interest2 := &ndn.Interest{
			Name:     prefix.Append(enc.NewBytesComponent(enc.TypeImplicitSha256DigestComponent, digest[:])),
			Lifetime: optional.Some(5 * time.Millisecond),
		}

		err := engine.Express(interest1, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultTimeout, args.Result)
		})
		require.NoError(t, err)
		err = engine.Express(interest2, func(args ndn.ExpressCallbackArgs) {
			hitCnt += 1
			require.Equal(t, ndn.InterestResultData, args.Result)
			require.True(t, args.Data.Name.Equal(prefix))
			require.Equal(t, []byte("test"), args.Data.Content)
		})
		require.NoError(t, err)

		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte("\x05\x33\x07\x28\x08\x04test\x01\x20"), buf[:12])
		buf = tu.NoErr(face.Consume())
		require.Equal(t, digest[:], buf[12:44])

		timer.MoveForward(4 * time.Millisecond)
		require.NoError(t, face.FeedPacket(dataWire))
		require.Equal(t, 1, hitCnt)
		timer.MoveForward(1 * time.Second)
		require.Equal(t, 2, hitCnt)
	})
}

func TestRoute(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0
		interestWire := []byte("\x05\x15\x07\x10\x08\x03not\x08\timportant\x0c\x01\x05")

		handler := func(args ndn.InterestHandlerArgs) {
			hitCnt += 1
			require.Equal(t, interestWire, args.RawInterest)
			require.Equal(t, []byte("\x08\x03not"), args.SigCovered)
			require.Equal(t, timer.Now().Add(5*time.Millisecond), args.Deadline)
			data := &ndn.Data{
				Name:     args.Interest.Name,
				MetaInfo: ndn.MetaInfo{ContentType: optional.Some(ndn.ContentTypeBlob)},
				Content:  []byte("test"),
			}
			wire, err := spec.DefaultWireFormat().MakeData(data, testSigner{})
			require.NoError(t, err)
			require.NoError(t, args.Reply(wire.Wire))
		}

		prefix := tu.NoErr(enc.NameFromStr("/not"))
		require.NoError(t, engine.AttachHandler(prefix, handler))
		require.ErrorIs(t, engine.AttachHandler(prefix, handler), ndn.ErrMultipleHandlers)

		require.NoError(t, face.FeedPacket(interestWire))
		require.Equal(t, 1, hitCnt)
		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte(
			"\x06\x24\x07\x10\x08\x03not\x08\timportant\x14\x03\x18\x01\x00\x15\x04test"+
				"\x16\x03\x1b\x01\xc8\x17\x00",
		), buf)

		// no handler, no reply
		require.NoError(t, face.FeedPacket([]byte("\x05\x0b\x07\x09\x08\x07unknown")))
		require.Equal(t, 1, hitCnt)
		tu.Err(face.Consume())
	})
}

func TestDetachHandler(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		var hits []string
		short := tu.NoErr(enc.NameFromStr("/a"))
		long := tu.NoErr(enc.NameFromStr("/a/b"))
		require.NoError(t, engine.AttachHandler(short, func(ndn.InterestHandlerArgs) { hits = append(hits, "a") }))
		require.NoError(t, engine.AttachHandler(long, func(ndn.InterestHandlerArgs) { hits = append(hits, "ab") }))

		wire := []byte("\x05\x0b\x07\x09\x08\x01a\x08\x01b\x08\x01c")
		require.NoError(t, face.FeedPacket(wire))
		require.NoError(t, engine.DetachHandler(long))
		require.Error(t, engine.DetachHandler(long))
		require.NoError(t, face.FeedPacket(wire))
		require.Equal(t, []string{"ab", "a"}, hits)
	})
}

func TestPitToken(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		hitCnt := 0

		handler := func(args ndn.InterestHandlerArgs) {
			hitCnt += 1
			require.Equal(t, []byte{1, 2, 3, 4}, args.PitToken)
			data := &ndn.Data{
				Name:     args.Interest.Name,
				MetaInfo: ndn.MetaInfo{ContentType: optional.Some(ndn.ContentTypeBlob)},
				Content:  []byte("test"),
			}
			wire, err := spec.DefaultWireFormat().MakeData(data, testSigner{})
			require.NoError(t, err)
			require.NoError(t, args.Reply(wire.Wire))
		}

		prefix := tu.NoErr(enc.NameFromStr("/not"))
		require.NoError(t, engine.AttachHandler(prefix, handler))
		require.NoError(t, face.FeedPacket([]byte(
			"\x64\x1f\x62\x04\x01\x02\x03\x04\x50\x17"+
				"\x05\x15\x07\x10\x08\x03not\x08\timportant\x0c\x01\x05",
		)))
		require.Equal(t, 1, hitCnt)
		buf := tu.NoErr(face.Consume())
		require.Equal(t, []byte(
			"\x64\x2e\x62\x04\x01\x02\x03\x04\x50\x26"+
				"\x06\x24\x07\x10\x08\x03not\x08\timportant\x14\x03\x18\x01\x00\x15\x04test"+
				"\x16\x03\x1b\x01\xc8\x17\x00",
		), buf)
	})
}

func TestPutAndPost(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		wire := []byte("\x06\x0c\x07\x03\x08\x01a\x16\x03\x1b\x01\x00\x17\x00")
		require.NoError(t, engine.Put(wire))
		require.Equal(t, wire, tu.NoErr(face.Consume()))

		done := make(chan struct{})
		engine.Post(func() { close(done) })
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("posted task did not run")
		}
	})
}

func TestRegisterRoute(t *testing.T) {
	executeTest(t, func(face *face.DummyFace, engine *basic_engine.Engine, timer *basic_engine.DummyTimer) {
		prefix := tu.NoErr(enc.NameFromStr("/psync/test"))

		// reply acts as the forwarder
		reply := func(status uint64) {
			buf := tu.NoErr(face.Consume())
			interest, _, err := spec.DecodeInterest(buf)
			require.NoError(t, err)
			require.Equal(t, 9, len(interest.Name))
			require.Equal(t, "/localhost/nfd/rib", interest.Name.Prefix(3).String())
			require.True(t, interest.MustBeFresh)

			params, err := spec.DecodeControlParameters(interest.Name[4].Val)
			require.NoError(t, err)
			require.True(t, params.Name.Equal(prefix))

			resp := &spec.ControlResponse{StatusCode: status, StatusText: "text", Body: params}
			data := &ndn.Data{Name: interest.Name, Content: resp.Encode()}
			wire, err := spec.DefaultWireFormat().MakeData(data, sig.NewSha256Signer())
			require.NoError(t, err)
			require.NoError(t, face.FeedPacket(wire.Wire))
		}

		errCh := make(chan error, 1)
		go func() { errCh <- engine.RegisterRoute(prefix) }()
		reply(200)
		require.NoError(t, <-errCh)

		go func() { errCh <- engine.UnregisterRoute(prefix) }()
		reply(403)
		require.Error(t, <-errCh)

		// a command without reply times out
		go func() { errCh <- engine.RegisterRoute(prefix) }()
		tu.NoErr(face.Consume())
		timer.MoveForward(2 * time.Second)
		require.ErrorIs(t, <-errCh, ndn.ErrDeadlineExceed)
	})
}
