// Command lp is a CLI for building and sharing declaration pages.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/and161185/lovepage/internal/codec"
	"github.com/and161185/lovepage/internal/convert"
	"github.com/and161185/lovepage/internal/model"
	grpcserver "github.com/and161185/lovepage/internal/server/grpc"
)

// ---- draft store ----

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "lovepage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lovepage")
}

func draftPath() string { return filepath.Join(cfgDir(), "draft.json") }

func saveDraft(p string, d model.Document) (err error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// loadDraft reads a document; absent fields take today's defaults.
func loadDraft(p string, now time.Time) (model.Document, error) {
	b, err := readAll(p)
	if err != nil {
		return model.Document{}, err
	}
	return codec.Unmarshal(b, now)
}

// ---- grpc dial ----

func loadTLS(caPath string, skipVerify, plaintext bool) (credentials.TransportCredentials, error) {
	if plaintext {
		return insecure.NewCredentials(), nil
	}
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

type conn struct {
	addr, caPath          string
	skipVerify, plaintext bool
}

func (c conn) dial(ctx context.Context) (*grpc.ClientConn, grpcserver.DeclarationsClient, error) {
	creds, err := loadTLS(c.caPath, c.skipVerify, c.plaintext)
	if err != nil {
		return nil, nil, err
	}
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(ctx, c.addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, nil, err
	}
	return cc, grpcserver.NewDeclarationsClient(cc), nil
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `lp CLI
Usage:
  lp [-addr HOST:PORT] [-cacert file | -insecure | -plaintext] <cmd> [args]

Local commands (draft defaults to %s):
  new     [-file draft]                               start a draft from defaults
  encode  [-file draft] [-base URL]                   print a self-contained share link
  decode  <payload | link>                            print the document inside a link
  days    [-file draft] [-now YYYY-MM-DD]             print the countdown label

Server commands:
  image   -src <file | url> [-crop x,y,w,h] [-slot N] [-file draft]
  audio   -src <file.mp3 | url> [-file draft]
  share   [-file draft] [-copy]                       store (or encode) and print the link
  open    <link>                                      resolve a link
`, draftPath())
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and configures TLS for RPC calls.
func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	skipVerify := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (dev server without certificates)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]
	remote := conn{addr: *addr, caPath: *caPath, skipVerify: *skipVerify, plaintext: *plaintext}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("lp %s (%s)\n", version, buildDate)

	case "new":
		fs := flag.NewFlagSet("new", flag.ExitOnError)
		file := fs.String("file", draftPath(), "draft file")
		_ = fs.Parse(args)
		if err := saveDraft(*file, model.Defaults(time.Now())); err != nil {
			fail(err)
		}
		fmt.Println(*file)

	case "encode":
		fs := flag.NewFlagSet("encode", flag.ExitOnError)
		file := fs.String("file", draftPath(), "draft file ('-'=stdin)")
		base := fs.String("base", "http://localhost:5173/", "public base URL")
		_ = fs.Parse(args)
		doc, err := loadDraft(*file, time.Now())
		if err != nil {
			fail(err)
		}
		link, err := encodeLink(*base, doc)
		if err != nil {
			fail(err)
		}
		fmt.Println(link)
		if !codec.Fits(link) {
			fmt.Fprintf(os.Stderr, "warning: link is %d chars, over the %d safe limit\n", len(link), codec.SafeURLLength)
		}

	case "decode":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "need <payload | link>")
			os.Exit(1)
		}
		doc, err := codec.Decode(payloadOf(args[0]))
		if err != nil {
			fail(err)
		}
		printJSON(doc)

	case "days":
		fs := flag.NewFlagSet("days", flag.ExitOnError)
		file := fs.String("file", draftPath(), "draft file ('-'=stdin)")
		at := fs.String("now", "", "reference date (YYYY-MM-DD), default today")
		_ = fs.Parse(args)
		now, err := refDate(*at)
		if err != nil {
			fail(err)
		}
		doc, err := loadDraft(*file, now)
		if err != nil {
			fail(err)
		}
		label := doc.CountdownLabel(now)
		if label == "" {
			fmt.Fprintln(os.Stderr, "countdown hidden or start date invalid")
			os.Exit(1)
		}
		fmt.Println(label)

	case "image":
		cmdImage(ctx, remote, args)
	case "audio":
		cmdAudio(ctx, remote, args)

	case "share":
		fs := flag.NewFlagSet("share", flag.ExitOnError)
		file := fs.String("file", draftPath(), "draft file ('-'=stdin)")
		copyURL := fs.Bool("copy", false, "copy the link to the clipboard")
		_ = fs.Parse(args)

		doc, err := loadDraft(*file, time.Now())
		if err != nil {
			fail(err)
		}
		req, err := convert.ToProtoDocument(doc)
		if err != nil {
			fail(err)
		}
		cc, cli, err := remote.dial(ctx)
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		out, err := cli.Share(ctx, req)
		if err != nil {
			fail(err)
		}
		f := out.GetFields()
		link := f["url"].GetStringValue()
		fmt.Println(link)
		if f["fallback"].GetBoolValue() {
			fmt.Fprintln(os.Stderr, "note: remote store failed, link carries the whole page")
		}
		if f["oversize"].GetBoolValue() {
			fmt.Fprintln(os.Stderr, "warning: link may be too long for some browsers")
		}
		if *copyURL {
			if err := clipboard.WriteAll(link); err != nil {
				fmt.Fprintf(os.Stderr, "copy failed: %v\n", err)
			} else {
				fmt.Fprintln(os.Stderr, "copied")
			}
		}

	case "open":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "need <link>")
			os.Exit(1)
		}
		cc, cli, err := remote.dial(ctx)
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		out, err := cli.Open(ctx, wrapperspb.String(args[0]))
		if err != nil {
			fail(err)
		}
		printJSON(out.AsMap())

	default:
		usage()
	}
}

// ---- helpers ----

func fail(err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
