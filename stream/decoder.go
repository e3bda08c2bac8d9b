package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

type payload struct {
	Content      *string `json:"content"`
	MessageCount *int    `json:"message_count"`
	Error        *string `json:"error"`
}

// Decoder turns raw body chunks into frames. It holds no state beyond the
// unterminated tail of the last chunk, so each send gets its own Decoder.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	residual []byte
	done     bool
}

// NewDecoder returns a Decoder ready for the first chunk of a stream.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Done reports whether the [DONE] sentinel has been decoded. Once true, Feed
// and Flush return nothing and the caller should stop reading.
func (d *Decoder) Done() bool {
	return d.done
}

// Feed appends chunk to the residual buffer and returns the frames for every
// complete line. An incomplete trailing line is kept for the next call.
func (d *Decoder) Feed(chunk []byte) []Frame {
	if d.done {
		return nil
	}

	d.residual = append(d.residual, chunk...)

	var frames []Frame
	for !d.done {
		i := bytes.IndexByte(d.residual, '\n')
		if i < 0 {
			break
		}
		line := string(d.residual[:i])
		d.residual = d.residual[i+1:]
		frames = d.decodeLine(line, frames)
	}

	if d.done || len(d.residual) == 0 {
		d.residual = nil
	}

	return frames
}

// Flush decodes a final line that was not newline-terminated. Call it once
// the underlying body reports end of stream.
func (d *Decoder) Flush() []Frame {
	if d.done || len(d.residual) == 0 {
		return nil
	}
	line := string(d.residual)
	d.residual = nil
	return d.decodeLine(line, nil)
}

func (d *Decoder) decodeLine(line string, frames []Frame) []Frame {
	line = strings.TrimSuffix(line, "\r")

	data, ok := strings.CutPrefix(line, Prefix)
	if !ok {
		return frames
	}

	if data == DoneSentinel {
		d.done = true
		return append(frames, Done())
	}

	if strings.TrimSpace(data) == "" {
		return frames
	}

	return append(frames, Classify(data)...)
}

// Classify converts a single non-sentinel payload into frames. A JSON object
// may yield a content frame, a metadata frame and an error frame, in that
// order. Anything that does not decode as an object degrades to Unparsed.
func Classify(data string) []Frame {
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return []Frame{Unparsed(data)}
	}

	var frames []Frame
	if p.Content != nil && *p.Content != "" {
		frames = append(frames, Content(*p.Content))
	}
	if p.MessageCount != nil {
		frames = append(frames, Metadata(*p.MessageCount))
	}
	if p.Error != nil && *p.Error != "" {
		frames = append(frames, Error(*p.Error))
	}
	return frames
}
