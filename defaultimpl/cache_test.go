package impl_test

import (
	"sync"
	"testing"

	impl "github.com/SchnorcherSepp/blobbench/defaultimpl"
	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

func TestNewCache(t *testing.T) {
	var buf []byte
	for _, size := range []int{-1, 0, 1, 50} {

		// new test cache (min. size == 17 MB)
		c := impl.NewCache(size)
		if c.Size() < 17*1024*1024 {
			t.Fatalf("cache too small: %d", c.Size())
		}
		if size == 50 && c.Size() != 50*1024*1024 {
			t.Fatalf("wrong cache size: %d", c.Size())
		}

		// byte pool: get and put more buffers than the pool holds
		for i := 0; i < 1000; i++ {
			buf = c.Pool().Get()
			if len(buf) != interf.SectorSize {
				t.Fatalf("invalid buffer size")
			}
		}
		for i := 0; i < 1000; i++ {
			c.Pool().Put(buf)
		}

		// a full sector fits into the cache
		buf[0] = 0xff
		if err := c.Set("blob", 13, buf); err != nil {
			t.Fatalf("%v", err)
		}
		b, err := c.Get("blob", 13, nil)
		if err != nil {
			t.Fatalf("%v", err)
		}
		if len(b) != interf.SectorSize || b[0] != 0xff {
			t.Fatalf("invalid data")
		}

		// same sector, other blob
		if _, err := c.Get("other", 13, nil); err == nil {
			t.Fatalf("no error for unknown blob")
		}

		// the cache stores a copy
		buf[0], buf[1], buf[2] = 10, 11, 12
		_ = c.Set("blob", 99, buf)
		buf[0], buf[1], buf[2] = 20, 21, 22
		b, _ = c.Get("blob", 99, c.Pool().Get())
		if b[0] != 10 || b[1] != 11 || b[2] != 12 {
			t.Fatalf("invalid data")
		}
		b[0], b[1], b[2] = 30, 31, 32
		b, _ = c.Get("blob", 99, c.Pool().Get())
		if b[0] != 10 || b[1] != 11 || b[2] != 12 {
			t.Fatalf("invalid data")
		}
	}
}

func TestNewPool(t *testing.T) {
	p := impl.NewPool()
	b := p.Get()
	if len(b) != interf.SectorSize {
		t.Fatalf("wrong buffer size: %d", len(b))
	}
	p.Put(b)
}

//--------------------------------------------------------------------------------------------------------------------//

func TestRace_Cache(t *testing.T) {
	c := impl.NewCache(0)

	var wg sync.WaitGroup
	wg.Add(5)
	for n := 0; n < 5; n++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				errS := c.Set("blob", uint64(i), []byte{0xff})
				b, errG := c.Get("blob", uint64(i), nil)
				if errS != nil || errG != nil || len(b) != 1 || b[0] != 0xff {
					t.Fail()
				}
			}
		}()
	}
	wg.Wait()
}
