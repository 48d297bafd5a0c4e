// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command vdoc converts documents between JSON and MessagePack and reports
// how much memory a parsed document occupies.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/apache/arrow-vdoc/memory"
	"github.com/apache/arrow-vdoc/vdoc"
	"github.com/docopt/docopt-go"
	"github.com/pterm/pterm"
)

const usage = `vdoc - convert and inspect JSON and MessagePack documents.

Usage:
  vdoc convert [options] [<file>]
  vdoc stat [options] [<file>]
  vdoc -h | --help
  vdoc --version

Options:
  -h --help              Show this screen.
  --version              Show version.
  --from=FORMAT          Input format: json or msgpack.
  --to=FORMAT            Output format: json or msgpack.
  --pretty               Indent JSON output.
  --nesting-limit=N      Deepest allowed container nesting.
  --capacity=BYTES       Memory cap for the document, 0 for none.
  --filter=FILE          JSON filter selecting the members to keep.
  -o FILE --output=FILE  Write to FILE instead of stdout.
  --config=FILE          YAML file supplying option defaults.
  -v --verbose           Log progress to stderr.
`

const version = "vdoc 0.1.0"

var errUnknownFormat = errors.New("unknown format")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) error {
	helped := false
	parser := &docopt.Parser{
		HelpHandler: func(err error, text string) {
			if err == nil {
				fmt.Fprintln(stdout, text)
				helped = true
			}
		},
	}
	opts, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w\n%s", err, usage)
	}
	if helped {
		return nil
	}

	cfg := defaultConfig()
	if path, ok := opts["--config"].(string); ok {
		if err := cfg.load(path); err != nil {
			return err
		}
	}
	if err := cfg.apply(opts); err != nil {
		return err
	}

	logger := pterm.DefaultLogger.WithWriter(stderr)
	if verbose, _ := opts.Bool("--verbose"); verbose {
		logger = logger.WithLevel(pterm.LogLevelDebug)
	}

	in := stdin
	name := "<stdin>"
	if path, ok := opts["<file>"].(string); ok {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in, name = f, path
	}

	mem := memory.NewGoAllocator()
	doc := vdoc.NewDocument(vdoc.WithAllocator(mem), vdoc.WithCapacity(cfg.Capacity))
	defer doc.Release()

	parseOpts := []vdoc.ParseOption{vdoc.WithNestingLimit(cfg.NestingLimit)}
	if cfg.Filter != "" {
		filter := vdoc.NewDocument(vdoc.WithAllocator(mem))
		defer filter.Release()
		if err := loadFilter(filter, cfg.Filter); err != nil {
			return err
		}
		parseOpts = append(parseOpts, vdoc.WithFilter(filter.Root()))
	}

	logger.Debug("parsing", logger.Args("input", name, "format", cfg.From))
	if err := parse(doc, bufio.NewReader(in), cfg.From, parseOpts); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	st := doc.Stats()
	logger.Debug("parsed", logger.Args("slots", st.Slots, "bytes", st.SlotBytes+st.StringBytes))

	if stat, _ := opts.Bool("stat"); stat {
		return writeStats(stdout, doc)
	}

	out := stdout
	if path, ok := opts["--output"].(string); ok {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	n, err := write(w, doc.Root(), cfg)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Debug("written", logger.Args("format", cfg.To, "bytes", n))
	return nil
}

func parse(doc *vdoc.Document, r io.ByteReader, format string, opts []vdoc.ParseOption) error {
	switch format {
	case formatJSON:
		return vdoc.ParseJSON(doc, r, opts...)
	case formatMsgPack:
		return vdoc.ParseMsgPack(doc, r, opts...)
	}
	return fmt.Errorf("%w %q", errUnknownFormat, format)
}

func write(w io.Writer, v vdoc.Variant, cfg config) (int, error) {
	switch cfg.To {
	case formatJSON:
		writeJSON := vdoc.WriteJSON
		if cfg.Pretty {
			writeJSON = vdoc.WriteJSONPretty
		}
		n, err := writeJSON(w, v)
		if err != nil {
			return n, err
		}
		m, err := io.WriteString(w, "\n")
		return n + m, err
	case formatMsgPack:
		return vdoc.WriteMsgPack(w, v)
	}
	return 0, fmt.Errorf("%w %q", errUnknownFormat, cfg.To)
}

func loadFilter(doc *vdoc.Document, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := vdoc.ParseJSON(doc, bufio.NewReader(f)); err != nil {
		return fmt.Errorf("filter %s: %w", path, err)
	}
	return nil
}

func writeStats(w io.Writer, doc *vdoc.Document) error {
	st := doc.Stats()
	root := doc.Root()
	data := pterm.TableData{
		{"", "count", "bytes"},
		{"slots", strconv.Itoa(st.Slots), strconv.Itoa(st.SlotBytes)},
		{"strings", strconv.Itoa(st.Strings), strconv.Itoa(st.StringBytes)},
		{"linked strings", strconv.Itoa(st.LinkedStrings), "-"},
		{"json", "-", strconv.Itoa(vdoc.MeasureJSON(root))},
		{"msgpack", "-", strconv.Itoa(vdoc.MeasureMsgPack(root))},
	}

	text, err := pterm.DefaultTable.WithRightAlignment(true).
		WithHasHeader(true).WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "type: %s\n", root.Type())
	if err == nil {
		_, err = fmt.Fprintln(w, text)
	}
	return err
}
