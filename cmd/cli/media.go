package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/lovepage/internal/errs"
	"github.com/and161185/lovepage/internal/imaging"
	"github.com/and161185/lovepage/internal/model"
	"github.com/and161185/lovepage/internal/share"
)

// encodeLink builds a self-contained link without any store.
func encodeLink(base string, doc model.Document) (string, error) {
	r, err := share.New(base, nil)
	if err != nil {
		return "", err
	}
	link, err := r.Share(context.Background(), doc)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

// payloadOf accepts either a bare payload or a link carrying it in "d".
func payloadOf(arg string) string {
	arg = strings.TrimSpace(arg)
	u, err := url.Parse(arg)
	if err != nil || u.RawQuery == "" {
		return arg
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return arg
	}
	if d := q.Get(share.ParamData); d != "" {
		return d
	}
	return arg
}

func refDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad -now %q: %w", s, err)
	}
	// noon keeps the day stable across time zones
	return t.Add(12 * time.Hour), nil
}

// parseCrop reads "x,y,w,h".
func parseCrop(s string) (*imaging.Crop, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: crop must be x,y,w,h", errs.ErrValidation)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: crop: %v", errs.ErrValidation, err)
		}
		n[i] = v
	}
	return &imaging.Crop{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "data:")
}

// sourceStruct builds a normalize request from a local file or a URL.
func sourceStruct(src string, crop *imaging.Crop) (*structpb.Struct, error) {
	m := map[string]any{}
	if isURL(src) {
		m["source"] = src
	} else {
		data, err := readAll(src)
		if err != nil {
			return nil, err
		}
		m["data"] = base64.StdEncoding.EncodeToString(data)
		m["mime"] = mimetype.Detect(data).String()
		m["name"] = src
	}
	if crop != nil {
		m["crop"] = map[string]any{"x": crop.X, "y": crop.Y, "width": crop.Width, "height": crop.Height}
	}
	return structpb.NewStruct(m)
}

// placeImage puts asset into slot; slot == len(images) appends.
func placeImage(doc *model.Document, slot int, asset string) error {
	n := len(doc.Images)
	switch {
	case slot < 0 || slot > n:
		return fmt.Errorf("%w: slot %d out of range [0,%d]", errs.ErrValidation, slot, n)
	case slot == n && n >= model.MaxImages:
		return errs.ErrTooManyImages
	}
	images := append([]string{}, doc.Images...)
	if slot == n {
		images = append(images, asset)
	} else {
		images[slot] = asset
	}
	doc.Images = images
	return nil
}

func cmdImage(ctx context.Context, remote conn, args []string) {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	src := fs.String("src", "", "image file (JPEG/PNG) or URL")
	cropS := fs.String("crop", "", "crop x,y,w,h in source pixels")
	slot := fs.Int("slot", -1, "draft image slot to fill (-1 prints only)")
	file := fs.String("file", draftPath(), "draft file")
	_ = fs.Parse(args)
	if *src == "" {
		fmt.Fprintln(os.Stderr, "need -src")
		os.Exit(1)
	}
	crop, err := parseCrop(*cropS)
	if err != nil {
		fail(err)
	}
	req, err := sourceStruct(*src, crop)
	if err != nil {
		fail(err)
	}

	cc, cli, err := remote.dial(ctx)
	if err != nil {
		fail(err)
	}
	defer cc.Close()

	out, err := cli.NormalizeImage(ctx, req)
	if err != nil {
		fail(err)
	}
	if *slot < 0 {
		fmt.Println(out.GetValue())
		return
	}
	doc, err := loadDraft(*file, time.Now())
	if err != nil {
		fail(err)
	}
	if err := placeImage(&doc, *slot, out.GetValue()); err != nil {
		fail(err)
	}
	if err := saveDraft(*file, doc); err != nil {
		fail(err)
	}
	fmt.Printf("slot %d updated (%d images)\n", *slot, len(doc.Images))
}

func cmdAudio(ctx context.Context, remote conn, args []string) {
	fs := flag.NewFlagSet("audio", flag.ExitOnError)
	src := fs.String("src", "", "MP3 file or URL")
	file := fs.String("file", draftPath(), "draft file")
	_ = fs.Parse(args)
	if *src == "" {
		fmt.Fprintln(os.Stderr, "need -src")
		os.Exit(1)
	}
	req, err := sourceStruct(*src, nil)
	if err != nil {
		fail(err)
	}

	cc, cli, err := remote.dial(ctx)
	if err != nil {
		fail(err)
	}
	defer cc.Close()

	out, err := cli.NormalizeAudio(ctx, req)
	if err != nil {
		fail(err)
	}
	doc, err := loadDraft(*file, time.Now())
	if err != nil {
		fail(err)
	}
	doc.MusicURL, doc.MusicEnabled = out.GetValue(), true
	if err := saveDraft(*file, doc); err != nil {
		fail(err)
	}
	fmt.Println("music updated")
}
