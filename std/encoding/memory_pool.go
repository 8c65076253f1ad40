package encoding

import (
	"hash"
	"sync"

	"github.com/cespare/xxhash"
)

type hashPoolObj struct {
	hash   hash.Hash64
	buffer []byte
}

var xxHashPool = sync.Pool{
	New: func() any {
		return &hashPoolObj{
			hash:   xxhash.New(),
			buffer: make([]byte, 0, 64),
		}
	},
}

func xxHashPoolGet() *hashPoolObj {
	obj := xxHashPool.Get().(*hashPoolObj)
	obj.hash.Reset()
	return obj
}

func xxHashPoolPut(obj *hashPoolObj) {
	xxHashPool.Put(obj)
}

// write feeds the TLV encoding of a component into the hash.
func (obj *hashPoolObj) write(c Component) {
	l := c.EncodingLength()
	if cap(obj.buffer) < l {
		obj.buffer = make([]byte, l)
	}
	buf := obj.buffer[:l]
	c.EncodeInto(buf)
	obj.hash.Write(buf)
}
