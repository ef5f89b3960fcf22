package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/wippyai/contract/codegen"
	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/inspect"
	"github.com/wippyai/contract/loader"
	"github.com/wippyai/contract/registry"
)

func main() {
	var opts options
	flag.StringVar(&opts.contracts, "contracts", "", "Contract document (.yaml, .yml or .proto), or grpc://host:port for server reflection")
	flag.StringVar(&opts.dir, "dir", ".", "Directory the package pattern is resolved from")
	flag.StringVar(&opts.pkg, "pkg", "", "Go package holding the implementation")
	flag.StringVar(&opts.typeName, "type", "", "Implementation type name")
	flag.StringVar(&opts.contract, "contract", "", "Contract to check (default: all)")
	flag.StringVar(&opts.gen, "gen", "", "Write a generated dispatch table to this file")
	flag.StringVar(&opts.genPkg, "gen-pkg", "", "Package clause of the generated file (default: the implementation's)")
	flag.BoolVar(&opts.list, "list", false, "List contracts and exit")
	interactive := flag.Bool("i", false, "Interactive mode with TUI")
	verbose := flag.Bool("v", false, "Verbose logging")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	if opts.contracts == "" || (!opts.list && (opts.pkg == "" || opts.typeName == "")) {
		fmt.Fprintln(os.Stderr, "Usage: contractcheck -contracts <file> -pkg <pattern> -type <Name> [-contract name] [-gen out.go]")
		fmt.Fprintln(os.Stderr, "       contractcheck -contracts <file> -list")
		fmt.Fprintln(os.Stderr, "       contractcheck -contracts <file> -pkg <pattern> -type <Name> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		setLoggers(log)
	}

	opts.color = !*noColor && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ok, err := run(context.Background(), opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

func setLoggers(log *zap.Logger) {
	loader.SetLogger(log.Named("loader"))
	inspect.SetLogger(log.Named("inspect"))
	dispatch.SetLogger(log.Named("dispatch"))
	codegen.SetLogger(log.Named("codegen"))
	registry.SetLogger(log.Named("registry"))
}
