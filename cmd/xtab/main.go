package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"xtab/internal/api"
	"xtab/internal/config"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/lsp"
	"xtab/internal/prompt"
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

func main() {
	versionFlag := flag.Bool("version", false, "Print the version of the program")
	logfileFlag := flag.String("logfile", "", "Path to log file")
	verboseFlag := flag.Int("verbosity", 1, "Log verbosity")
	dbFlag := flag.String("db", defaultDBPath(), "Path to the history database")
	configFlag := flag.String("config", "", "Path to YAML config file")
	serveFlag := flag.Bool("serve", false, "Run the LSP server on stdio")
	rpcFlag := flag.String("rpc", "", "Also listen for JSON-RPC clients on this address")
	fileFlag := flag.String("file", "", "Render a prompt for this file and exit")
	lineFlag := flag.Int("line", 0, "Cursor line for -file (0-based)")
	colFlag := flag.Int("col", 0, "Cursor column for -file (0-based)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("xtab version %s\n", Version)
		return
	}

	if *logfileFlag != "" {
		commonlog.Configure(*verboseFlag, logfileFlag)
	} else {
		commonlog.Configure(*verboseFlag, nil)
	}

	opts := prompt.DefaultOptions()
	if *configFlag != "" {
		var err error
		opts, err = config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*dbFlag), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	store, err := history.Open(*dbFlag)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer store.Close()

	extractor, err := langctx.NewGoExtractor()
	if err != nil {
		log.Fatalf("Failed to create language context extractor: %v", err)
	}
	defer extractor.Close()

	switch {
	case *serveFlag:
		runServer(store, extractor, opts, *rpcFlag)
	case *fileFlag != "":
		renderOnce(store, extractor, opts, *fileFlag, *lineFlag, *colFlag)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runServer(store *history.Store, extractor *langctx.Extractor, opts prompt.Options, rpcAddr string) {
	recorder := history.NewRecorder(store, 256)
	recorder.Run()
	defer recorder.Close()

	if rpcAddr != "" {
		listener, err := net.Listen("tcp", rpcAddr)
		if err != nil {
			log.Fatalf("Failed to listen on %s: %v", rpcAddr, err)
		}
		defer listener.Close()
		go api.Serve(listener, api.NewPrompt(store, extractor, opts))
	}

	server := lsp.NewServer(store, recorder, extractor, opts)
	if err := server.RunStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// renderOnce assembles one prompt for a file on disk and prints it. This
// is a debugging aid; the history comes from whatever the database holds.
func renderOnce(store *history.Store, extractor *langctx.Extractor, opts prompt.Options, path string, line, col int) {
	content, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}
	entries, err := store.Recent(0)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	lines := edit.SplitLines(string(content))
	cursorLine := min(max(line, 0), len(lines)-1)

	var snippets []langctx.Snippet
	if strings.HasSuffix(path, ".go") {
		snippets, err = extractor.ExtractAt(context.Background(), string(content),
			cursorLine, col, opts.MaxTokensLanguageContext, tokens.Estimate)
		if err != nil {
			log.Fatalf("Failed to extract language context: %v", err)
		}
	}

	res := prompt.Assemble(prompt.Input{
		DocID:           path,
		Lines:           lines,
		CursorLine:      cursorLine,
		CursorColumn:    col,
		EditWindow:      edit.NewOffsetRange(cursorLine, cursorLine+1),
		History:         entries,
		LanguageContext: snippets,
	}, opts, tokens.Estimate)

	fmt.Println(res.Text)
}

func defaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "xtab", "history.db")
}
