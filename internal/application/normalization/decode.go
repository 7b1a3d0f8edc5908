package normalization

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// DecodeRecord decodes one JSON value.  Numbers are kept as json.Number so
// that integer converters see the exact digits.
func DecodeRecord(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, errors.CodeDecodeFailed, "failed to decode input record")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.CodeDecodeFailed, "failed to decode input record").
			WithDetail("unexpected data after the first JSON value")
	}
	return v, nil
}

// DecodeRecords reads a JSON array of records, a single JSON value, or a
// stream of whitespace-separated values (NDJSON).  A top-level array is
// flattened into its elements.
func DecodeRecords(r io.Reader) ([]any, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDecodeFailed, "failed to read input")
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	if first == '[' {
		var arr []any
		if err := dec.Decode(&arr); err != nil {
			return nil, errors.Wrap(err, errors.CodeDecodeFailed, "failed to decode record array")
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, errors.New(errors.CodeDecodeFailed, "failed to decode record array").
				WithDetail("unexpected data after the array")
		}
		return arr, nil
	}

	var out []any
	for i := 0; ; i++ {
		var v any
		err := dec.Decode(&v)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDecodeFailed, "failed to decode record stream").
				WithDetail(fmt.Sprintf("record=%d", i))
		}
		out = append(out, v)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

//Personal.AI order the ending
