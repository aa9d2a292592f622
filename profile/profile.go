// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package profile provides a simple way to generate pprof compatible model build profiles.
//
// Since model construction operates in a single go-routine, this package is
// also NOT thread safe and is meant to be called in the same go-routine.
package profile

import (
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/consensys/optkit/logger"
	"github.com/google/pprof/profile"
)

var (
	sessions       []*Profile // active sessions
	activeSessions uint32
	mu             sync.Mutex
)

// Profile represents an active model build profiling session.
type Profile struct {
	// defaults to ./optkit.pprof
	// if blank, profile is not written to disk
	filePath string

	// actual pprof profile struct
	// details on pprof format: https://github.com/google/pprof/blob/main/proto/README.md
	pprof profile.Profile

	functions map[string]*profile.Function
	locations map[uint64]*profile.Location
}

// Option defines configuration Options for Profile.
type Option func(*Profile)

// WithPath controls the profile destination file. If blank, profile is not written.
//
// Defaults to ./optkit.pprof.
func WithPath(path string) Option {
	return func(p *Profile) {
		p.filePath = path
	}
}

// WithNoOutput indicates that the profile is not going to be written to disk.
//
// This is equivalent to WithPath("")
func WithNoOutput() Option {
	return func(p *Profile) {
		p.filePath = ""
	}
}

// Start creates a new active profiling session. When Stop() is called, this
// session is removed from active profiling sessions and may be serialized to
// disk as a pprof compatible file (see WithPath option).
//
// It is allowed to create multiple overlapping profiling sessions for one model.
func Start(options ...Option) *Profile {
	p := Profile{
		functions: make(map[string]*profile.Function),
		locations: make(map[uint64]*profile.Location),
		filePath:  "optkit.pprof",
	}
	p.pprof.SampleType = []*profile.ValueType{{
		Type: "constraints",
		Unit: "count",
	}}

	for _, option := range options {
		option(&p)
	}

	mu.Lock()
	sessions = append(sessions, &p)
	mu.Unlock()
	atomic.AddUint32(&activeSessions, 1)

	log := logger.Logger()
	if p.filePath == "" {
		log.Warn().Msg("profiling session will not be written to disk, use profile.WithPath(...)")
	} else {
		log.Info().Str("path", p.filePath).Msg("profiling session started")
	}

	return &p
}

// Stop removes the profile from active sessions and may write the pprof file to disk.
func (p *Profile) Stop() {
	mu.Lock()
	defer mu.Unlock()

	// remove ourselves from the active sessions
	for i := range sessions {
		if sessions[i] == p {
			sessions[i] = sessions[len(sessions)-1]
			sessions = sessions[:len(sessions)-1]
			break
		}
	}
	atomic.AddUint32(&activeSessions, ^uint32(0))

	log := logger.Logger()
	log.Info().Str("path", p.filePath).Int("constraints", len(p.pprof.Sample)).Msg("profiling session ended")

	if p.filePath == "" {
		return
	}
	f, err := os.Create(p.filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("creating profile file")
	}
	defer f.Close()
	if err := p.pprof.Write(f); err != nil {
		log.Fatal().Err(err).Msg("writing profile")
	}
}

// NbConstraints returns the number of constraints recorded by this session.
func (p *Profile) NbConstraints() int {
	return len(p.pprof.Sample)
}

// RecordConstraint adds a sample (with count == 1) to all active profiling
// sessions. The sample's stack is the caller's stack.
func RecordConstraint() {
	if atomic.LoadUint32(&activeSessions) == 0 {
		return // do not collect the stack if no session is active
	}
	pc := make([]uintptr, 20)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return
	}
	frames := runtime.CallersFrames(pc[:n])
	var stack []runtime.Frame
	for {
		frame, more := frames.Next()
		if strings.HasSuffix(frame.Function, ".main") {
			break
		}
		stack = append(stack, frame)
		if !more {
			break
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range sessions {
		p.addSample(stack)
	}
}

func (p *Profile) addSample(stack []runtime.Frame) {
	sample := &profile.Sample{Value: []int64{1}}
	for i := range stack {
		sample.Location = append(sample.Location, p.getLocation(&stack[i]))
	}
	p.pprof.Sample = append(p.pprof.Sample, sample)
}

func (p *Profile) getLocation(frame *runtime.Frame) *profile.Location {
	if l, ok := p.locations[uint64(frame.PC)]; ok {
		return l
	}

	key := frame.File + frame.Function
	f, ok := p.functions[key]
	if !ok {
		f = &profile.Function{
			ID:         uint64(len(p.functions) + 1),
			Name:       frame.Function,
			SystemName: frame.Function,
			Filename:   frame.File,
		}
		p.functions[key] = f
		p.pprof.Function = append(p.pprof.Function, f)
	}

	l := &profile.Location{
		ID:      uint64(len(p.locations) + 1),
		Line:    []profile.Line{{Function: f, Line: int64(frame.Line)}},
		Address: uint64(frame.PC),
	}
	p.locations[uint64(frame.PC)] = l
	p.pprof.Location = append(p.pprof.Location, l)

	return l
}
