package codec_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/garden-serde/pkg/serde/codec"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/serde/mapper"
	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type schedule struct {
	Payload []byte                         `json:"payload"`
	At      codec.LocalTime                `json:"at"`
	On      codec.LocalDate                `json:"on"`
	Period  codec.Range[codec.LocalDate]   `json:"period"`
	Window  *codec.Range[codec.LocalTime]  `json:"window,omitempty"`
	Scores  codec.Range[int]               `json:"scores"`
	History []codec.Range[codec.LocalDate] `json:"history"`
}

func sampleSchedule() schedule {
	return schedule{
		Payload: []byte{1, 2, 3},
		At:      codec.LocalTime{Hour: 13, Minute: 5},
		On:      codec.LocalDate{Year: 2020, Month: time.February, Day: 29},
		Period: codec.NewRange(
			codec.LocalDate{Year: 2020, Month: time.January, Day: 1},
			codec.LocalDate{Year: 2020, Month: time.December, Day: 31},
		),
		Window: &codec.Range[codec.LocalTime]{
			Start:        codec.LocalTime{Hour: 9},
			EndInclusive: codec.LocalTime{Hour: 17, Minute: 30, Second: 15, Nanosecond: 500},
		},
		Scores: codec.NewRange(-3, 42),
		History: []codec.Range[codec.LocalDate]{
			codec.NewRange(codec.LocalDate{Year: 1999, Month: 1, Day: 1}, codec.LocalDate{Year: 1999, Month: 1, Day: 2}),
		},
	}
}

type CodecSuite struct {
	suite.Suite
	m *mapper.Mapper
}

func (s *CodecSuite) SetupSuite() {
	s.m = mapper.New()
}

func (s *CodecSuite) serialize(v any) string {
	data, err := s.m.Serialize(v, format.ContentTypeJSON)
	s.Require().NoError(err)
	return string(data)
}

func (s *CodecSuite) TestLocalTimeWireShape() {
	s.Equal(`[13,5,0,0]`, s.serialize(codec.LocalTime{Hour: 13, Minute: 5}))
	s.Equal(`[23,59,59,999999999]`, s.serialize(codec.LocalTime{Hour: 23, Minute: 59, Second: 59, Nanosecond: 999999999}))

	var t codec.LocalTime
	s.Require().NoError(s.m.Parse([]byte(`[13,5,0,0]`), &t, "json"))
	s.Equal(codec.LocalTime{Hour: 13, Minute: 5}, t)
}

func (s *CodecSuite) TestLocalDateWireShape() {
	s.Equal(`[2020,1,1]`, s.serialize(codec.LocalDate{Year: 2020, Month: time.January, Day: 1}))

	var d codec.LocalDate
	s.Require().NoError(s.m.Parse([]byte(`[-44,3,15]`), &d, "json"))
	s.Equal(codec.LocalDate{Year: -44, Month: time.March, Day: 15}, d)

	s.Equal(`[0,0,0]`, s.serialize(codec.LocalDate{}))
	s.Require().NoError(s.m.Parse([]byte(`[0,0,0]`), &d, "json"))
	s.Equal(codec.LocalDate{}, d)
}

func (s *CodecSuite) TestBytesWireShape() {
	s.Equal(`"AQID"`, s.serialize([]byte{1, 2, 3}))
	s.Equal(`""`, s.serialize([]byte{}))

	var b []byte
	s.Require().NoError(s.m.Parse([]byte(`"AQID"`), &b, "json"))
	s.Equal([]byte{1, 2, 3}, b)
}

func (s *CodecSuite) TestRangeWireShape() {
	rg := codec.NewRange(
		codec.LocalDate{Year: 2020, Month: time.January, Day: 1},
		codec.LocalDate{Year: 2020, Month: time.December, Day: 31},
	)
	s.Equal(`{"start":[2020,1,1],"endInclusive":[2020,12,31]}`, s.serialize(rg))

	var got codec.Range[codec.LocalDate]
	s.Require().NoError(s.m.Parse([]byte(`{"start":[2020,1,1],"endInclusive":[2020,12,31]}`), &got, "json"))
	s.Equal(rg, got)

	s.Equal(`{"start":"a","endInclusive":"z"}`, s.serialize(codec.NewRange("a", "z")))
}

func (s *CodecSuite) TestDecodeFailures() {
	cases := []struct {
		doc    string
		target any
		want   error
	}{
		{`[13,5,0]`, new(codec.LocalTime), merr.ErrStructuralMismatch},
		{`[13,5,0,0,0]`, new(codec.LocalTime), merr.ErrStructuralMismatch},
		{`{"hour":13}`, new(codec.LocalTime), merr.ErrStructuralMismatch},
		{`[13,"5",0,0]`, new(codec.LocalTime), merr.ErrStructuralMismatch},
		{`[13,5.5,0,0]`, new(codec.LocalTime), merr.ErrStructuralMismatch},
		{`[24,0,0,0]`, new(codec.LocalTime), merr.ErrValueOutOfRange},
		{`[2020,1]`, new(codec.LocalDate), merr.ErrStructuralMismatch},
		{`"2020-01-01"`, new(codec.LocalDate), merr.ErrStructuralMismatch},
		{`[2021,2,29]`, new(codec.LocalDate), merr.ErrValueOutOfRange},
		{`[2020,0,1]`, new(codec.LocalDate), merr.ErrValueOutOfRange},
		{`[0,0,1]`, new(codec.LocalDate), merr.ErrValueOutOfRange},
		{`"AQ!D"`, new([]byte), merr.ErrMalformedEncoding},
		{`[1,2,3]`, new([]byte), merr.ErrStructuralMismatch},
		{`{"endInclusive":[2020,12,31],"start":[2020,1,1]}`, new(codec.Range[codec.LocalDate]), merr.ErrStructuralMismatch},
		{`{"start":[2020,1,1],"end":[2020,12,31]}`, new(codec.Range[codec.LocalDate]), merr.ErrStructuralMismatch},
		{`{"start":[2020,1,1],"endInclusive":[2020,12,31],"extra":1}`, new(codec.Range[codec.LocalDate]), merr.ErrStructuralMismatch},
		{`[[2020,1,1],[2020,12,31]]`, new(codec.Range[codec.LocalDate]), merr.ErrStructuralMismatch},
		{`{"start":[2020,1],"endInclusive":[2020,12,31]}`, new(codec.Range[codec.LocalDate]), merr.ErrStructuralMismatch},
	}
	for _, c := range cases {
		err := s.m.Parse([]byte(c.doc), c.target, "json")
		s.ErrorIs(err, c.want, c.doc)
	}
}

func (s *CodecSuite) TestMissingTypeContext() {
	doc := []byte(`{"start":[2020,1,1],"endInclusive":[2020,12,31]}`)
	tree, err := s.m.ParseTree(doc, "json")
	s.Require().NoError(err)

	_, err = s.m.DecodeRange(token.NewTreeReader(tree), nil)
	s.ErrorIs(err, merr.ErrMissingTypeContext)

	// the missing context is reported before the shape is looked at
	_, err = s.m.DecodeRange(token.NewTreeReader(int64(5)), nil)
	s.ErrorIs(err, merr.ErrMissingTypeContext)

	rg, err := s.m.DecodeRange(token.NewTreeReader(tree), codec.TypeOf[codec.LocalDate]())
	s.Require().NoError(err)
	s.Equal(codec.LocalDate{Year: 2020, Month: time.January, Day: 1}, rg.Start)
	s.Equal(codec.LocalDate{Year: 2020, Month: time.December, Day: 31}, rg.EndInclusive)
}

func (s *CodecSuite) TestRoundTripEveryFormat() {
	want := sampleSchedule()
	for _, ct := range s.m.Formats().ContentTypes() {
		data, err := s.m.Serialize(want, ct)
		s.Require().NoError(err, ct)

		var got schedule
		s.Require().NoError(s.m.Parse(data, &got, ct), ct)
		s.Equal(want, got, ct)
	}
}

func (s *CodecSuite) TestNullLeavesZeroValue() {
	var got schedule
	s.Require().NoError(s.m.Parse([]byte(`{"payload":null,"at":null,"window":null}`), &got, "json"))
	s.Nil(got.Payload)
	s.Equal(codec.LocalTime{}, got.At)
	s.Nil(got.Window)
}

func (s *CodecSuite) TestConcurrentUse() {
	want := sampleSchedule()
	doc, err := s.m.Serialize(want, format.ContentTypeJSON)
	s.Require().NoError(err)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		ct := s.m.Formats().ContentTypes()[i%4]
		g.Go(func() error {
			var got schedule
			if err := s.m.Parse(doc, &got, format.ContentTypeJSON); err != nil {
				return err
			}
			if !reflect.DeepEqual(want, got) {
				return fmt.Errorf("decoded %v, want %v", got, want)
			}
			data, err := s.m.Serialize(got, ct)
			if err != nil {
				return err
			}
			var again schedule
			return s.m.Parse(data, &again, ct)
		})
	}
	s.NoError(g.Wait())
}

func TestCodec(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

type RegistrySuite struct {
	suite.Suite
}

func (s *RegistrySuite) TestDefaultRegistry() {
	r := codec.NewDefaultRegistry()
	s.Equal([]codec.Tag{codec.TagBytes, codec.TagClosedRange, codec.TagLocalDate, codec.TagLocalTime}, r.Tags())

	for t, tag := range map[reflect.Type]codec.Tag{
		codec.TypeOf[[]byte]():                         codec.TagBytes,
		codec.TypeOf[codec.LocalTime]():                codec.TagLocalTime,
		codec.TypeOf[codec.LocalDate]():                codec.TagLocalDate,
		codec.TypeOf[codec.Range[int]]():               codec.TagClosedRange,
		codec.TypeOf[codec.Range[codec.LocalDate]]():   codec.TagClosedRange,
		codec.TypeOf[codec.Range[[]codec.LocalTime]](): codec.TagClosedRange,
	} {
		st, ok := r.Lookup(t)
		s.True(ok, t.String())
		s.Equal(tag, st.Tag, t.String())
	}

	_, ok := r.Lookup(codec.TypeOf[string]())
	s.False(ok)
	_, err := r.MustLookup(codec.TypeOf[time.Duration]())
	s.ErrorIs(err, merr.ErrUnregisteredType)
	_, err = r.MustLookup(nil)
	s.ErrorIs(err, merr.ErrUnregisteredType)

	st, ok := r.ByTag(codec.TagLocalDate)
	s.True(ok)
	s.Equal(codec.TagLocalDate, st.Tag)
}

func (s *RegistrySuite) TestRegisterValidation() {
	r := codec.NewDefaultRegistry()
	s.ErrorIs(r.Register(codec.TypeOf[[]byte](), codec.Strategy{Tag: "other", Encode: codec.BytesStrategy().Encode, Decode: codec.BytesStrategy().Decode}), merr.ErrParameterInvalid)
	s.ErrorIs(codec.Register[string](r, codec.BytesStrategy()), merr.ErrParameterInvalid)
	s.ErrorIs(r.Register(nil, codec.BytesStrategy()), merr.ErrParameterMissing)
	s.ErrorIs(r.Register(codec.TypeOf[string](), codec.Strategy{Tag: "string"}), merr.ErrParameterMissing)
	s.ErrorIs(r.Register(codec.TypeOf[string](), codec.Strategy{Encode: codec.BytesStrategy().Encode, Decode: codec.BytesStrategy().Decode}), merr.ErrParameterMissing)
	s.ErrorIs(r.RegisterFamily(nil, codec.RangeStrategy()), merr.ErrParameterMissing)
	s.ErrorIs(r.RegisterFamily(codec.IsRangeType, codec.RangeStrategy()), merr.ErrParameterInvalid)
}

func (s *RegistrySuite) TestCustomStrategy() {
	type celsius float64
	r := codec.NewDefaultRegistry()
	s.Require().NoError(codec.Register[celsius](r, codec.Strategy{
		Tag: "celsius",
		Encode: func(_ codec.EncodeContext, w token.Writer, v any) error {
			return w.WriteString(fmt.Sprintf("%.1fC", float64(v.(celsius))))
		},
		Decode: func(_ codec.DecodeContext, r token.Reader) (any, error) {
			var f float64
			if _, err := fmt.Sscanf(r.Text(), "%fC", &f); err != nil {
				return nil, merr.WrapErrMalformedEncoding("celsius", err.Error())
			}
			return celsius(f), nil
		},
	}))

	m := mapper.New(mapper.WithRegistry(r))
	data, err := m.Serialize(codec.NewRange(celsius(-1.5), celsius(30)), "json")
	s.Require().NoError(err)
	s.Equal(`{"start":"-1.5C","endInclusive":"30.0C"}`, string(data))

	var got codec.Range[celsius]
	s.Require().NoError(m.Parse(data, &got, "json"))
	s.Equal(codec.NewRange(celsius(-1.5), celsius(30)), got)
}

func TestRegistry(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func TestRangeHelpers(t *testing.T) {
	rg := codec.NewRange(1, 10)
	assert.True(t, codec.Contains(rg, 1))
	assert.True(t, codec.Contains(rg, 10))
	assert.False(t, codec.Contains(rg, 11))

	assert.False(t, rg.IsZero())
	assert.True(t, codec.Range[codec.LocalDate]{}.IsZero())
	assert.True(t, codec.Range[*codec.LocalDate]{}.IsZero())
	assert.False(t, codec.Range[any]{EndInclusive: 0}.IsZero())

	assert.Equal(t, codec.TypeOf[int](), codec.RangeElementType(reflect.TypeOf(rg)))
	assert.Nil(t, codec.RangeElementType(codec.TypeOf[int]()))
	assert.False(t, codec.IsRangeType(codec.TypeOf[*codec.Range[int]]()))

	converted, err := codec.ConvertRange(reflect.TypeOf(rg), codec.Range[any]{Start: 1, EndInclusive: 10})
	require.NoError(t, err)
	assert.Equal(t, rg, converted)

	converted, err = codec.ConvertRange(reflect.TypeOf(rg), codec.Range[any]{})
	require.NoError(t, err)
	assert.Equal(t, codec.Range[int]{}, converted)

	_, err = codec.ConvertRange(reflect.TypeOf(rg), codec.Range[any]{Start: "1", EndInclusive: 10})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	_, err = codec.ConvertRange(codec.TypeOf[int](), rg)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	_, err = codec.ConvertRange(reflect.TypeOf(rg), 5)
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}

// stubContext decodes nested values straight from the tree and carries a
// fixed contextual type.
type stubContext struct {
	elem reflect.Type
}

func (c stubContext) ElementType() reflect.Type { return c.elem }

func (c stubContext) DecodeValue(r token.Reader, t reflect.Type) (any, error) {
	if st, ok := codec.NewDefaultRegistry().Lookup(t); ok {
		return st.Decode(c, r)
	}
	return token.ReadValue(r)
}

func TestStrategiesWithoutMapper(t *testing.T) {
	w := token.NewTreeWriter()
	require.NoError(t, codec.LocalTimeStrategy().Encode(nil, w, codec.LocalTime{Hour: 13, Minute: 5}))
	tree, err := w.Result()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(13), int64(5), int64(0), int64(0)}, tree)

	r := token.NewTreeReader(token.ObjectOf("start", []any{2020, 1, 1}, "endInclusive", []any{2020, 12, 31}))
	_, err = r.Next()
	require.NoError(t, err)
	v, err := codec.RangeStrategy().Decode(stubContext{elem: codec.TypeOf[codec.LocalDate]()}, r)
	require.NoError(t, err)
	assert.Equal(t, codec.Range[any]{
		Start:        codec.LocalDate{Year: 2020, Month: time.January, Day: 1},
		EndInclusive: codec.LocalDate{Year: 2020, Month: time.December, Day: 31},
	}, v)

	_, err = codec.RangeStrategy().Decode(stubContext{}, r)
	assert.ErrorIs(t, err, merr.ErrMissingTypeContext)

	assert.ErrorIs(t, codec.BytesStrategy().Encode(nil, token.NewTreeWriter(), "not bytes"), merr.ErrParameterInvalid)
	assert.ErrorIs(t, codec.LocalDateStrategy().Encode(nil, token.NewTreeWriter(), 5), merr.ErrParameterInvalid)
	assert.ErrorIs(t, codec.RangeStrategy().Encode(nil, token.NewTreeWriter(), 5), merr.ErrParameterInvalid)
}
