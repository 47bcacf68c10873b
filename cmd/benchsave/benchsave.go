// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchsave uploads benchmark harness logs to a series storage server.
//
// Usage:
//
//	benchsave -family name [-group dims] [-dupes policy] [-server url] [label=]log...
//
// The server folds the logs into one series of the given family and
// stores it, and benchsave prints the assigned upload ID. As with
// benchseries, an argument of the form label=path labels every method
// read from path.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type uploadStatus struct {
	UploadID string   `json:"uploadid"`
	FileIDs  []string `json:"fileids"`
	Points   int      `json:"points"`
	Warnings []string `json:"warnings"`
}

type options struct {
	server  string
	family  string
	group   string
	dupes   string
	auth    bool
	verbose bool
}

func main() {
	log.SetPrefix("benchsave: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:], nil); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// run uploads the logs named in args. If hc is nil, run uses an
// OAuth2 client with -auth and the default client otherwise.
func run(stdout, stderr io.Writer, args []string, hc *http.Client) error {
	var o options
	flags := flag.NewFlagSet("benchsave", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: benchsave -family name [flags] [label=]log...\n")
		flags.PrintDefaults()
	}
	flags.StringVar(&o.server, "server", "http://localhost:8080", "upload logs to server at `url`")
	flags.StringVar(&o.family, "family", "", "log `family` of the inputs")
	flags.StringVar(&o.group, "group", "", "group series by these context `dimensions` (default: the family's grouping)")
	flags.StringVar(&o.dupes, "dupes", "", "raw samples repeated under a new header: combine or replace")
	flags.BoolVar(&o.auth, "auth", false, "authenticate with Google application default credentials")
	flags.BoolVar(&o.verbose, "v", false, "print verbose log messages")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if o.family == "" {
		flags.Usage()
		return fmt.Errorf("missing -family")
	}
	files := flags.Args()
	if len(files) == 0 {
		return fmt.Errorf("no files to upload")
	}

	ctx := context.Background()
	if hc == nil {
		hc = http.DefaultClient
		if o.auth {
			ts, err := google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/userinfo.email")
			if err != nil {
				return err
			}
			hc = oauth2.NewClient(ctx, ts)
		}
	}

	pr, pw := io.Pipe()
	mpw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mpw, &o, files))
	}()

	start := time.Now()
	resp, err := hc.Post(strings.TrimRight(o.server, "/")+"/upload", mpw.FormDataContentType(), pr)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %v: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	status := &uploadStatus{}
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return fmt.Errorf("cannot parse upload response: %w", err)
	}
	for _, w := range status.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", strings.TrimRight(w, "\n"))
	}
	if o.verbose {
		s := ""
		if len(files) != 1 {
			s = "s"
		}
		fmt.Fprintf(stderr, "%d file%s uploaded in %.2f seconds; stored %d points.\n", len(files), s, time.Since(start).Seconds(), status.Points)
	}
	fmt.Fprintf(stdout, "%s\n", status.UploadID)
	return nil
}

// writeForm writes the upload form for files to mpw and closes it.
func writeForm(mpw *multipart.Writer, o *options, files []string) error {
	if err := mpw.WriteField("family", o.family); err != nil {
		return err
	}
	if o.group != "" {
		if err := mpw.WriteField("group", o.group); err != nil {
			return err
		}
	}
	if o.dupes != "" {
		if err := mpw.WriteField("dupes", o.dupes); err != nil {
			return err
		}
	}
	for _, arg := range files {
		label, path := "", arg
		if i := strings.Index(arg, "="); i >= 0 {
			label, path = arg[:i], arg[i+1:]
		}
		if err := mpw.WriteField("label", label); err != nil {
			return err
		}
		if err := writeOneFile(mpw, path); err != nil {
			return err
		}
	}
	return mpw.Close()
}

// writeOneFile reads name and writes it to mpw.
func writeOneFile(mpw *multipart.Writer, name string) error {
	w, err := mpw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return err
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
