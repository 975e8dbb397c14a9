// Package convert maps domain values to and from protobuf well-known types.
package convert

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/lovepage/internal/codec"
	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/imaging"
	"github.com/and161185/lovepage/internal/model"
	"github.com/and161185/lovepage/internal/share"
)

// --- Document ---

// ToProtoDocument renders a document as a Struct keyed by its JSON field names.
func ToProtoDocument(d model.Document) (*structpb.Struct, error) {
	if d.Images == nil {
		d.Images = []string{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return structpb.NewStruct(m)
}

// FromProtoDocument parses a Struct into a document. Absent fields take defaults at now;
// unknown fields and bad enum values are validation errors.
func FromProtoDocument(s *structpb.Struct, now time.Time) (model.Document, error) {
	if s == nil {
		return model.Defaults(now), nil
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	d, err := codec.Unmarshal(raw, now)
	if errors.Is(err, errs.ErrDecode) {
		return model.Document{}, fmt.Errorf("%w: document: %v", errs.ErrValidation, err)
	}
	return d, err
}

// --- Share results ---

// ToProtoLink renders a share link.
func ToProtoLink(l share.Link) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"url":       l.URL,
		"id":        l.ID,
		"transport": string(l.Transport),
		"fallback":  l.Fallback,
		"oversize":  l.Oversize,
	})
}

// ToProtoView renders a loaded link. "days" is null unless the countdown is shown and valid.
func ToProtoView(v share.View, now time.Time) (*structpb.Struct, error) {
	doc, err := ToProtoDocument(v.Document)
	if err != nil {
		return nil, err
	}
	days := structpb.NewNullValue()
	if v.Document.ShowCountdown {
		if n, err := v.Document.DaysSince(now); err == nil {
			days = structpb.NewNumberValue(float64(n))
		}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"mode":     structpb.NewStringValue(string(v.Mode)),
		"id":       structpb.NewStringValue(v.ID),
		"document": structpb.NewStructValue(doc),
		"days":     days,
	}}, nil
}

// --- Media sources ---

// FromProtoSource reads {source, mime, name, data, crop} into a normalizer input.
// data is standard base64; source is a remote or data: URL. Exactly one must be set.
func FromProtoSource(s *structpb.Struct) (imaging.Source, *imaging.Crop, error) {
	if s == nil {
		return imaging.Source{}, nil, fmt.Errorf("%w: empty request", errs.ErrValidation)
	}
	f := s.GetFields()
	src := imaging.Source{
		URL:  f["source"].GetStringValue(),
		MIME: f["mime"].GetStringValue(),
		Name: f["name"].GetStringValue(),
	}
	if data := f["data"].GetStringValue(); data != "" {
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return imaging.Source{}, nil, fmt.Errorf("%w: data: %v", errs.ErrValidation, err)
		}
		src.Data = raw
	}
	if (src.URL == "") == (len(src.Data) == 0) {
		return imaging.Source{}, nil, fmt.Errorf("%w: exactly one of source or data is required", errs.ErrValidation)
	}

	cv := f["crop"].GetStructValue()
	if cv == nil {
		return src, nil, nil
	}
	crop, err := fromProtoCrop(cv)
	if err != nil {
		return imaging.Source{}, nil, err
	}
	return src, crop, nil
}

func fromProtoCrop(s *structpb.Struct) (*imaging.Crop, error) {
	var c imaging.Crop
	for name, dst := range map[string]*int{"x": &c.X, "y": &c.Y, "width": &c.Width, "height": &c.Height} {
		v, ok := s.GetFields()[name]
		if !ok {
			continue
		}
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != float64(int(n.NumberValue)) {
			return nil, fmt.Errorf("%w: crop.%s must be an integer", errs.ErrValidation, name)
		}
		*dst = int(n.NumberValue)
	}
	return &c, nil
}
