package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/felixgeelhaar/mathdrill/internal/config"
	"github.com/felixgeelhaar/mathdrill/internal/domain"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/markup"
	"github.com/felixgeelhaar/mathdrill/internal/storage"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// drillFlags are shared by generate and worksheet
type drillFlags struct {
	topic      string
	mode       string
	subtype    string
	difficulty string
	seed       int64
}

func (f *drillFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.topic, "topic", "", "topic id (see 'mathdrill topics')")
	fs.StringVar(&f.mode, "mode", "", "topic mode, defaults to the topic's default mode")
	fs.StringVar(&f.subtype, "subtype", "", "topic subtype")
	fs.StringVar(&f.difficulty, "difficulty", "", "easy, normal or hard")
	fs.Int64Var(&f.seed, "seed", 0, "seed for a reproducible draw (0 uses the clock)")
}

// validate checks required flags and normalizes the difficulty name
func (f *drillFlags) validate() error {
	if f.topic == "" {
		return errors.New("--topic is required")
	}
	if f.difficulty == "" {
		return nil
	}
	d, err := domain.ParseDifficulty(f.difficulty)
	if err != nil {
		return err
	}
	f.difficulty = string(d)
	return nil
}

// openLocal loads the local config, the drill service and the worksheet store
func openLocal(ctx context.Context) (*config.LocalConfig, *drill.Service, *storage.Backend, error) {
	dir, err := config.EnsureDrillDir()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := drill.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	backend, err := storage.Open(ctx, cfg.Storage, dir, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return cfg, svc, backend, nil
}

func cmdTopics(args []string) error {
	fs := flag.NewFlagSet("topics", flag.ExitOnError)
	tag := fs.String("tag", "", "only list topics with this tag")
	_ = fs.Parse(args)

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := drill.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	topics := svc.Catalog().ListTopics()
	if *tag != "" {
		topics = svc.Catalog().ListByTag(*tag)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tMODES\tDEFAULT")
	for _, t := range topics {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Title, strings.Join(t.Modes, ", "), t.DefaultMode)
	}
	return tw.Flush()
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var df drillFlags
	df.register(fs)
	_ = fs.Parse(args)
	if err := df.validate(); err != nil {
		return err
	}

	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := drill.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	p, err := svc.Generate(context.Background(), drill.Request{
		Topic:      df.topic,
		Mode:       df.mode,
		Subtype:    df.subtype,
		Difficulty: domain.Difficulty(df.difficulty),
		Seed:       df.seed,
	})
	if err != nil && !errors.Is(err, domain.ErrGenerationExhausted) {
		return err
	}
	if p.Fallback {
		fmt.Fprintln(os.Stderr, "warning: generation exhausted, showing placeholder")
	}

	fmt.Printf("Problem: %s\n", markup.Inline(p.Display))
	fmt.Printf("Answer:  %s\n", markup.Inline(p.Answer))
	return nil
}

func cmdWorksheet(args []string) error {
	fs := flag.NewFlagSet("worksheet", flag.ExitOnError)
	var df drillFlags
	df.register(fs)
	count := fs.Int("count", 0, "number of problems (default from config)")
	format := fs.String("format", "text", "output format: text, tex, html, json")
	answers := fs.Bool("answers", false, "print the answers after the problems")
	_ = fs.Parse(args)
	if err := df.validate(); err != nil {
		return err
	}
	f, err := worksheet.ParseFormat(*format)
	if err != nil {
		return err
	}

	ctx := context.Background()
	_, svc, backend, err := openLocal(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	ws, err := svc.Batch(ctx, drill.BatchRequest{
		Topic:      df.topic,
		Mode:       df.mode,
		Subtype:    df.subtype,
		Difficulty: domain.Difficulty(df.difficulty),
		Count:      *count,
		Seed:       df.seed,
	})
	if err != nil {
		return err
	}
	if err := backend.Store.Save(ctx, ws); err != nil {
		return fmt.Errorf("save worksheet: %w", err)
	}
	if backend.Events != nil {
		_ = backend.Events.Record(ctx, domain.EventWorksheetGenerated, ws.ID, ws.Topic, map[string]int{
			"count":     len(ws.Problems),
			"fallbacks": ws.Fallbacks,
		})
	}

	if err := worksheet.Render(os.Stdout, ws, domain.ViewProblems, f); err != nil {
		return err
	}
	if *answers {
		if f == worksheet.FormatText || f == worksheet.FormatTeX {
			fmt.Println()
		}
		if err := worksheet.Render(os.Stdout, ws, domain.ViewAnswers, f); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "worksheet %s (seed %d", ws.ID, ws.Seed)
	if ws.Fallbacks > 0 {
		fmt.Fprintf(os.Stderr, ", %d placeholder", ws.Fallbacks)
	}
	fmt.Fprintln(os.Stderr, ")")
	return nil
}

func cmdAnswers(args []string) error {
	fs := flag.NewFlagSet("answers", flag.ExitOnError)
	format := fs.String("format", "text", "output format: text, tex, html, json")
	problems := fs.Bool("problems", false, "show the problems instead of the answers")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: mathdrill answers [--format f] <worksheet-id>")
	}
	f, err := worksheet.ParseFormat(*format)
	if err != nil {
		return err
	}

	ctx := context.Background()
	_, _, backend, err := openLocal(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	ws, err := backend.Store.Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	view := domain.ViewAnswers
	if *problems {
		view = domain.ViewProblems
	}
	return worksheet.Render(os.Stdout, ws, view, f)
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	topic := fs.String("topic", "", "only list worksheets of this topic")
	limit := fs.Int("limit", 20, "maximum number of worksheets")
	_ = fs.Parse(args)

	ctx := context.Background()
	_, _, backend, err := openLocal(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	list, err := backend.Store.List(ctx, worksheet.Filter{Topic: *topic, Limit: *limit})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No worksheets stored")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTOPIC\tMODE\tDIFFICULTY\tPROBLEMS\tCREATED")
	for _, ws := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			ws.ID, ws.Topic, ws.Mode, ws.Difficulty, len(ws.Problems),
			ws.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
