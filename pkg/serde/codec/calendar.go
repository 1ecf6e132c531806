package codec

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// LocalTime is a time of day without date or zone.
type LocalTime = civil.Time

// LocalDate is a proleptic Gregorian calendar date without time or zone.
type LocalDate = civil.Date

// LocalTimeStrategy encodes a time of day as [hour, minute, second, nanosecond].
// All four elements are always written.
func LocalTimeStrategy() Strategy {
	return Strategy{
		Tag:    TagLocalTime,
		Encode: encodeLocalTime,
		Decode: decodeLocalTime,
	}
}

// LocalDateStrategy encodes a calendar date as [year, month, day].
func LocalDateStrategy() Strategy {
	return Strategy{
		Tag:    TagLocalDate,
		Encode: encodeLocalDate,
		Decode: decodeLocalDate,
	}
}

func encodeLocalTime(_ EncodeContext, w token.Writer, v any) error {
	t, ok := v.(LocalTime)
	if !ok {
		return merr.WrapErrParameterInvalid("civil.Time", fmt.Sprintf("%T", v))
	}
	return writeInts(w, int64(t.Hour), int64(t.Minute), int64(t.Second), int64(t.Nanosecond))
}

func decodeLocalTime(_ DecodeContext, r token.Reader) (any, error) {
	parts, err := readInts(r, 4, "local time")
	if err != nil {
		return nil, err
	}
	t := LocalTime{
		Hour:       int(parts[0]),
		Minute:     int(parts[1]),
		Second:     int(parts[2]),
		Nanosecond: int(parts[3]),
	}
	if !t.IsValid() {
		return nil, merr.WrapErrValueOutOfRange(string(TagLocalTime), parts)
	}
	return t, nil
}

func encodeLocalDate(_ EncodeContext, w token.Writer, v any) error {
	d, ok := v.(LocalDate)
	if !ok {
		return merr.WrapErrParameterInvalid("civil.Date", fmt.Sprintf("%T", v))
	}
	return writeInts(w, int64(d.Year), int64(d.Month), int64(d.Day))
}

func decodeLocalDate(_ DecodeContext, r token.Reader) (any, error) {
	parts, err := readInts(r, 3, "local date")
	if err != nil {
		return nil, err
	}
	d := LocalDate{
		Year:  int(parts[0]),
		Month: time.Month(parts[1]),
		Day:   int(parts[2]),
	}
	// [0,0,0] is how the zero LocalDate encodes.
	if d == (LocalDate{}) {
		return d, nil
	}
	if !d.IsValid() {
		return nil, merr.WrapErrValueOutOfRange(string(TagLocalDate), parts)
	}
	return d, nil
}

func writeInts(w token.Writer, values ...int64) error {
	if err := w.WriteArrayStart(); err != nil {
		return err
	}
	for _, v := range values {
		if err := w.WriteInt(v); err != nil {
			return err
		}
	}
	return w.WriteArrayEnd()
}

// readInts reads an array of exactly n integers. The reader must be on the
// array start and is left on the array end.
func readInts(r token.Reader, n int, what string) ([]int64, error) {
	if err := token.Expect(r, token.ArrayStart, what+" should start with an array"); err != nil {
		return nil, err
	}
	parts := make([]int64, n)
	for i := range parts {
		v, err := token.ReadInt(r, fmt.Sprintf("%s element %d", what, i))
		if err != nil {
			return nil, err
		}
		parts[i] = v
	}
	if err := token.ExpectNext(r, token.ArrayEnd, fmt.Sprintf("%s should end after %d elements", what, n)); err != nil {
		return nil, err
	}
	return parts, nil
}
