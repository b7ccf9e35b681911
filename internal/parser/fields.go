package parser

import (
	"github.com/indigo-web/utils/uf"
	"github.com/lolgesten/hoot/config"
	"github.com/lolgesten/hoot/framing"
	"github.com/lolgesten/hoot/headers"
	"github.com/lolgesten/hoot/http/status"
	"github.com/lolgesten/hoot/internal/buffer"
)

type fieldState uint8

const (
	fKey fieldState = iota + 1
	fColonSP
	fValue
	fValueCR
	fBlockCR
)

// fieldParser consumes a header block up to and including the empty line
// terminating it. Names and values are accumulated in buff, so the views
// handed to dst survive until the buffer is cleared for the next message.
type fieldParser struct {
	cfg   *config.Headers
	buff  *buffer.Buffer
	dst   *headers.Storage
	info  *framing.Info
	key   string
	state fieldState
	count int
}

func newFieldParser(cfg *config.Headers, dst *headers.Storage, info *framing.Info) fieldParser {
	return fieldParser{
		cfg:   cfg,
		buff:  buffer.New(cfg.Space.Default, cfg.Space.Maximal),
		dst:   dst,
		info:  info,
		state: fKey,
	}
}

func (f *fieldParser) reset() {
	f.state = fKey
	f.count = 0
	f.key = ""
	f.buff.Clear()
}

func (f *fieldParser) parse(data []byte) (done bool, extra []byte, err error) {
	switch f.state {
	case fKey:
		goto key
	case fColonSP:
		goto colonSP
	case fValue:
		goto value
	case fValueCR:
		goto valueCR
	case fBlockCR:
		goto blockCR
	default:
		panic("hoot: BUG: field parser: unknown state")
	}

key:
	if len(data) == 0 {
		f.state = fKey
		return false, nil, nil
	}

	if f.buff.SegmentLength() == 0 {
		switch data[0] {
		case '\n':
			return true, data[1:], nil
		case '\r':
			data = data[1:]
			goto blockCR
		}
	}

	{
		for i := 0; i < len(data); i++ {
			char := data[i]
			if char == ':' {
				if !f.buff.Append(data[:i]) {
					return true, nil, status.ErrHeaderFieldsTooLarge
				}

				if f.buff.SegmentLength() == 0 {
					return true, nil, status.ErrBadHeaderKey
				}

				if f.buff.SegmentLength() > f.cfg.MaxFieldSize {
					return true, nil, status.ErrHeaderFieldTooLarge
				}

				if f.count++; f.count > f.cfg.Number.Maximal {
					return true, nil, status.ErrTooManyHeaders
				}

				f.key = uf.B2S(f.buff.Finish())
				data = data[i+1:]
				goto colonSP
			}

			if !tchar[char] {
				return true, nil, status.ErrBadHeaderKey
			}
		}

		if !f.buff.Append(data) {
			return true, nil, status.ErrHeaderFieldsTooLarge
		}

		if f.buff.SegmentLength() > f.cfg.MaxFieldSize {
			return true, nil, status.ErrHeaderFieldTooLarge
		}

		f.state = fKey
		return false, nil, nil
	}

colonSP:
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t') {
		data = data[1:]
	}

	if len(data) == 0 {
		f.state = fColonSP
		return false, nil, nil
	}

	goto value

value:
	{
		for i := 0; i < len(data); i++ {
			switch char := data[i]; char {
			case '\n':
				if !f.buff.Append(data[:i]) {
					return true, nil, status.ErrHeaderFieldsTooLarge
				}

				data = data[i+1:]
				goto valueDone
			case '\r':
				if !f.buff.Append(data[:i]) {
					return true, nil, status.ErrHeaderFieldsTooLarge
				}

				data = data[i+1:]
				goto valueCR
			default:
				if !vchar[char] {
					return true, nil, status.ErrBadHeaderValue
				}
			}
		}

		if !f.buff.Append(data) {
			return true, nil, status.ErrHeaderFieldsTooLarge
		}

		if f.buff.SegmentLength() > f.cfg.MaxFieldSize {
			return true, nil, status.ErrHeaderFieldTooLarge
		}

		f.state = fValue
		return false, nil, nil
	}

valueCR:
	if len(data) == 0 {
		f.state = fValueCR
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadHeaderValue
	}

	data = data[1:]
	goto valueDone

valueDone:
	{
		segment := f.buff.Preview()
		trailing := 0
		for i := len(segment); i > 0; i-- {
			if segment[i-1] != ' ' && segment[i-1] != '\t' {
				break
			}

			trailing++
		}

		f.buff.Trunc(trailing)

		if f.buff.SegmentLength() > f.cfg.MaxFieldSize {
			return true, nil, status.ErrHeaderFieldTooLarge
		}

		value := uf.B2S(f.buff.Finish())
		f.dst.Add(f.key, value)
		if err = f.info.Collect(f.key, value); err != nil {
			return true, nil, err
		}

		goto key
	}

blockCR:
	if len(data) == 0 {
		f.state = fBlockCR
		return false, nil, nil
	}

	if data[0] != '\n' {
		return true, nil, status.ErrBadRequest
	}

	return true, data[1:], nil
}
