// Package json decodes the two input shapes of the ETL job, song-catalog
// records and listening-log events, into typed records.
//
// Input files are streams of JSON values:
//
//   - newline-delimited objects, one record per line:
//     {"song_id":"S1", ...}
//     {"song_id":"S2", ...}
//   - top-level arrays of objects, flattened into the stream when
//     Options.AllowArrays is set:
//     [{"page":"NextSong", ...}, {"page":"Home", ...}]
//
// Any other top-level value is a decode error.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Options controls the shapes a Decoder accepts.
type Options struct {
	// AllowArrays flattens top-level arrays of objects into the record stream.
	AllowArrays bool
}

// Decoder yields one raw JSON object per call to Next.
type Decoder struct {
	dec     *json.Decoder
	opt     Options
	pending []json.RawMessage
	n       int
}

// NewDecoder constructs a Decoder over r.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	return &Decoder{dec: json.NewDecoder(r), opt: opt}
}

// Count returns the number of records returned by Next so far.
func (d *Decoder) Count() int { return d.n }

// Next returns the next JSON object in the stream, or io.EOF when the stream
// is exhausted.
func (d *Decoder) Next() (json.RawMessage, error) {
	for len(d.pending) == 0 {
		var raw json.RawMessage
		if err := d.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("json parser: decode: %w", err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		switch raw[0] {
		case '{':
			d.n++
			return raw, nil
		case '[':
			if !d.opt.AllowArrays {
				return nil, errors.New("json parser: top-level array encountered but allow_arrays=false")
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(raw, &elems); err != nil {
				return nil, fmt.Errorf("json parser: decode array: %w", err)
			}
			d.pending = elems
		default:
			return nil, fmt.Errorf("json parser: unsupported top-level JSON value %.20q", raw)
		}
	}

	elem := bytes.TrimSpace(d.pending[0])
	d.pending = d.pending[1:]
	if len(elem) == 0 || elem[0] != '{' {
		return nil, fmt.Errorf("json parser: array element is not an object: %.20q", elem)
	}
	d.n++
	return elem, nil
}
