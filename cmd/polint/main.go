// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Program polint statically checks a Mandatory Access Control policy
// source tree and reports severity-coded findings.
//
// Usage: polint [-l LEVEL] [-e ID]... [-d ID]... [--only-enabled] [--verbose] [-c CONFIG] ROOT
//
// ROOT is the root of a policy source tree: it must contain an
// access_vectors file and a modules.conf file, with type-enforcement
// (.te), interface-definition (.if), and file-context (.fc) files found
// anywhere beneath it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborman/getopt"

	"github.com/polint/polint/pkg/check"
	"github.com/polint/polint/pkg/config"
	"github.com/polint/polint/pkg/output"
	"github.com/polint/polint/pkg/pipeline"
)

var stop = os.Exit

// exitIfError prints err to stderr and exits with status 1 if err is
// non-nil.
func exitIfError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop(1)
	}
}

func main() {
	var level string
	var enable, disable []string
	var onlyEnabled, verbose bool
	var configPath string

	getopt.StringVarLong(&level, "level", 'l', "minimum severity to report: C, S, W, E, or F", "LEVEL")
	getopt.ListVarLong(&enable, "enable", 'e', "enable check ID (repeatable)", "ID")
	getopt.ListVarLong(&disable, "disable", 'd', "disable check ID (repeatable)", "ID")
	getopt.BoolVarLong(&onlyEnabled, "only-enabled", 0, "run only checks named by --enable")
	getopt.BoolVarLong(&verbose, "verbose", 'v', "dump parsed trees before reporting findings")
	getopt.StringVarLong(&configPath, "config", 'c', "global check-enablement configuration file", "FILE")
	getopt.SetParameters("ROOT")

	if err := getopt.Getopt(func(getopt.Option) bool { return true }); err != nil {
		fmt.Fprintln(os.Stderr, err)
		getopt.PrintUsage(os.Stderr)
		stop(1)
		return
	}

	args := getopt.Args()
	if len(args) != 1 {
		getopt.PrintUsage(os.Stderr)
		stop(1)
		return
	}
	root := args[0]

	cfg, err := config.Load(configPath)
	exitIfError(err)

	en := check.NewEnablement()
	en.ConfigEnabled = cfg.Enabled
	en.ConfigDisabled = cfg.Disabled
	en.OnlyEnabled = onlyEnabled
	en.MinSeverity = parseSeverity(level)
	for _, id := range enable {
		en.CLIEnabled[id] = true
	}
	for _, id := range disable {
		en.CLIDisabled[id] = true
	}

	src, err := loadSourceTree(root)
	exitIfError(err)

	d := pipeline.NewDriver(en)
	result := d.Run(src)
	defer result.Ctx.Cleanup()
	exitIfError(result.Err)

	if verbose {
		for _, t := range result.Trees {
			fmt.Fprintf(os.Stdout, "--- %s ---\n", t.Path)
			output.DumpTree(os.Stdout, t.Root)
		}
	}

	output.PrintFindings(os.Stdout, result.Findings, en.MinSeverity)
	output.PrintSummary(os.Stdout, result.Counts)

	stop(exitCode(result.Findings))
}

func parseSeverity(level string) check.Severity {
	switch strings.ToUpper(level) {
	case "C":
		return check.Convention
	case "S":
		return check.Style
	case "W":
		return check.Warning
	case "E":
		return check.Error
	case "F":
		return check.Fatal
	default:
		return check.Convention
	}
}

// exitCode implements spec.md §6: 0 if no findings at severity >= error,
// non-zero otherwise, with a reserved code for a fatal-internal finding.
func exitCode(findings []check.Finding) int {
	code := 0
	for _, f := range findings {
		if f.Severity == check.Fatal {
			return 2
		}
		if f.Severity >= check.Error {
			code = 1
		}
	}
	return code
}

// loadSourceTree walks root for the files the pipeline driver needs:
// access_vectors and modules.conf at the root, and .te/.if/.fc files
// anywhere beneath it.
func loadSourceTree(root string) (pipeline.SourceTree, error) {
	var src pipeline.SourceTree

	avPath := filepath.Join(root, "access_vectors")
	avData, err := os.ReadFile(avPath)
	if err != nil {
		return src, fmt.Errorf("reading access vectors: %w", err)
	}
	src.AccessVectors = pipeline.FileSource{Path: avPath, Data: string(avData)}

	modPath := filepath.Join(root, "modules.conf")
	modData, err := os.ReadFile(modPath)
	if err != nil {
		return src, fmt.Errorf("reading modules.conf: %w", err)
	}
	src.ModulesConf = pipeline.FileSource{Path: modPath, Data: string(modData)}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		module := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		fs := pipeline.FileSource{Path: path, Module: module, Data: string(data)}
		switch filepath.Ext(path) {
		case ".if":
			src.InterfaceFiles = append(src.InterfaceFiles, fs)
		case ".te":
			src.TEFiles = append(src.TEFiles, fs)
		case ".fc":
			src.FCFiles = append(src.FCFiles, fs)
		}
		return nil
	})
	if err != nil {
		return src, fmt.Errorf("walking %s: %w", root, err)
	}
	return src, nil
}
