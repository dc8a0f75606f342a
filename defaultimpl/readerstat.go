package impl

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	interf "github.com/SchnorcherSepp/blobbench/interfaces"
)

// DebugOff deactivates all debug messages. Errors, warnings or information are still printed.
const DebugOff = 0

// DebugLow shows debug messages that happen very rarely during operation (to keep the log files small).
const DebugLow = 1

// DebugHigh shows all debug messages.
const DebugHigh = 2

//--------------------------------------------------------------------------------------------------------------------//

// _ReaderStat counts what a cached reader did internally.
// All counters are updated atomically.
type _ReaderStat struct {
	debugLvl    uint8  // enable debug logging [0, 1, 2] (level: high=2)
	packageName string // text for debug logging

	_CacheHit   uint64
	_CacheMis   uint64
	_CacheSet   uint64
	_Open       uint64
	_OpenErr    uint64
	_SectorSkip uint64
	_SectorRead uint64
	_ReadErr    uint64
	_Close      uint64
}

func (s *_ReaderStat) Stat() map[string]uint64 {
	ret := map[string]uint64{
		"CacheHit":   atomic.LoadUint64(&s._CacheHit),
		"CacheMis":   atomic.LoadUint64(&s._CacheMis),
		"CacheSet":   atomic.LoadUint64(&s._CacheSet),
		"Open":       atomic.LoadUint64(&s._Open),
		"OpenErr":    atomic.LoadUint64(&s._OpenErr),
		"SectorSkip": atomic.LoadUint64(&s._SectorSkip),
		"SectorRead": atomic.LoadUint64(&s._SectorRead),
		"ReadErr":    atomic.LoadUint64(&s._ReadErr),
		"Close":      atomic.LoadUint64(&s._Close),
	}

	// ignore zero values
	for k, v := range ret {
		if v == 0 {
			delete(ret, k)
		}
	}
	return ret
}

// PrintStatAfterClose is the final call in Close().
func (s *_ReaderStat) PrintStatAfterClose(name string) {
	if s.debugLvl < DebugLow {
		return
	}

	stat := s.Stat()
	keys := make([]string, 0, len(stat))
	for k := range stat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, stat[k])
	}
	log.Printf("DEBUG: %s/stat.PrintStatAfterClose: name=%s: %s", s.packageName, name, strings.Join(parts, ", "))
}

// ------------------------------------------------------------------------------------------------------------------ //

func (s *_ReaderStat) CacheGet(name string, sector uint64, retLen int, err error) {
	if err == nil {
		atomic.AddUint64(&s._CacheHit, 1)
	} else {
		atomic.AddUint64(&s._CacheMis, 1)
	}
	if s.debugLvl >= DebugHigh {
		log.Printf("DEBUG: %s/stat.CacheGet: name=%s, sector=%d, ret=%d/%d, err=%v", s.packageName, name, sector, retLen, interf.SectorSize, err)
	}
}

func (s *_ReaderStat) CacheSet(name string, sector uint64, data int, err error) {
	atomic.AddUint64(&s._CacheSet, 1)
	if s.debugLvl >= DebugHigh || err != nil {
		pre := "DEBUG"
		if err != nil {
			pre = "ERROR"
		}
		log.Printf("%s: %s/stat.CacheSet: name=%s, sector=%d, data=%d/%d, expire=%d, err=%v", pre, s.packageName, name, sector, data, interf.SectorSize, interf.CacheExpireSeconds, err)
	}
}

func (s *_ReaderStat) Open(name string, err error) {
	atomic.AddUint64(&s._Open, 1)
	if err != nil {
		atomic.AddUint64(&s._OpenErr, 1)
	}
	if s.debugLvl >= DebugHigh {
		log.Printf("DEBUG: %s/stat.Open: name=%s, err=%v", s.packageName, name, err)
	}
}

func (s *_ReaderStat) SectorSkip(name string, sector uint64, n int, err error) {
	atomic.AddUint64(&s._SectorSkip, 1)
	if s.debugLvl >= DebugHigh {
		log.Printf("DEBUG: %s/stat.SectorSkip: name=%s, sector=%d, n=%d/%d, err=%v", s.packageName, name, sector, n, interf.SectorSize, err)
	}
}

func (s *_ReaderStat) SectorRead(name string, sector uint64, n int, err error) {
	atomic.AddUint64(&s._SectorRead, 1)
	if err != nil && err != io.EOF {
		atomic.AddUint64(&s._ReadErr, 1)
	}
	if s.debugLvl >= DebugHigh {
		log.Printf("DEBUG: %s/stat.SectorRead: name=%s, sector=%d, n=%d/%d, err=%v", s.packageName, name, sector, n, interf.SectorSize, err)
	}
}

func (s *_ReaderStat) Close(name string) {
	atomic.AddUint64(&s._Close, 1)
	if s.debugLvl >= DebugHigh {
		log.Printf("DEBUG: %s/stat.Close: name=%s", s.packageName, name)
	}
}
