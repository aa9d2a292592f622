// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// binary layout: magic, format version, body length, cbor-encoded Model.
var magic = [4]byte{'o', 'p', 't', 'k'}

// formatVersion is bumped on incompatible changes of the serialized layout.
const formatVersion uint32 = 1

// maxBodyLen bounds the allocation made for the cbor body; a header declaring
// more than this is corrupt, not a real model.
const maxBodyLen = 1 << 30

var (
	ErrBadMagic        = errors.New("not an optkit model stream")
	ErrVersionMismatch = errors.New("unsupported model format version")
	errTruncatedStream = errors.New("truncated model stream")
	errBodyTooLarge    = errors.New("model stream declares an oversized body")
)

// WriteTo serializes the model to w. The format is a small binary header
// followed by a canonical cbor document; ReadFrom reads it back exactly.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	body, err := cbor.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("serializing model: %w", err)
	}

	var header [16]byte
	copy(header[:4], magic[:])
	binary.BigEndian.PutUint32(header[4:8], formatVersion)
	binary.BigEndian.PutUint64(header[8:16], uint64(len(body)))

	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}
	n, err = w.Write(body)
	written += int64(n)
	return written, err
}

// ReadFrom deserializes a model from r, replacing the receiver's content.
// Streams written by an incompatible format version are rejected.
func (m *Model) ReadFrom(r io.Reader) (int64, error) {
	var header [16]byte
	n, err := io.ReadFull(r, header[:])
	read := int64(n)
	if err != nil {
		return read, errTruncatedStream
	}
	if [4]byte(header[:4]) != magic {
		return read, ErrBadMagic
	}
	if v := binary.BigEndian.Uint32(header[4:8]); v != formatVersion {
		return read, fmt.Errorf("%w: stream has v%d, library reads v%d", ErrVersionMismatch, v, formatVersion)
	}

	bodyLen := binary.BigEndian.Uint64(header[8:16])
	if bodyLen > maxBodyLen {
		return read, fmt.Errorf("%w: %d bytes", errBodyTooLarge, bodyLen)
	}
	body := make([]byte, bodyLen)
	n, err = io.ReadFull(r, body)
	read += int64(n)
	if err != nil {
		return read, errTruncatedStream
	}

	var decoded Model
	if err := cbor.Unmarshal(body, &decoded); err != nil {
		return read, fmt.Errorf("deserializing model: %w", err)
	}
	*m = decoded
	m.byName = make(map[string]int32, len(m.Variables))
	for vid, v := range m.Variables {
		m.byName[v.Name] = int32(vid)
	}
	return read, nil
}
