package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"mixnet/internal/nn"
	"mixnet/internal/storage"
	mixapi "mixnet/pkg/mixnet"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "build":
		return runBuild(ctx, args[1:])
	case "eval":
		return runEval(ctx, args[1:])
	case "checkpoints":
		return runCheckpoints(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	case "activations":
		return runActivations(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	configPath := fs.String("config", "", "JSON build config file")
	variant := fs.String("variant", "linear", "policy variant: linear|nonlinear|mixture_linear|mixture_nonlinear")
	dimT := fs.Int("dim-t", 1, "generalized-time feature width")
	dimX := fs.Int("dim-x", 1, "relative-state feature width")
	dimU := fs.Int("dim-u", 1, "control-output width")
	numExperts := fs.Int("experts", 0, "expert count for mixture variants")
	activation := fs.String("activation", "", "hidden activation name (default tanh)")
	seed := fs.Int64("seed", 0, "parameter initialization seed")
	checkpointID := fs.String("checkpoint", "", "checkpoint id (default random)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := mixapi.BuildRequest{
		CheckpointID: *checkpointID,
		Variant:      *variant,
		DimT:         *dimT,
		DimX:         *dimX,
		DimU:         *dimU,
		NumExperts:   *numExperts,
		Activation:   *activation,
		Seed:         *seed,
	}
	if *configPath != "" {
		loaded, err := loadBuildRequestFromConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Build(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("built %s checkpoint=%s layers=%d dim_in=%d dim_u=%d\n",
		summary.Name, summary.CheckpointID, summary.LayerCount, summary.Dims.DimIn(), summary.Dims.DimU)
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	checkpointID := fs.String("checkpoint", "", "checkpoint id to evaluate")
	inputPath := fs.String("input", "", "JSON input file with t and x batches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *checkpointID == "" {
		return usageError("eval requires -checkpoint")
	}
	if *inputPath == "" {
		return usageError("eval requires -input")
	}

	t, x, err := loadEvalInput(*inputPath)
	if err != nil {
		return err
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Eval(ctx, mixapi.EvalRequest{CheckpointID: *checkpointID, T: t, X: x})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"u": result.U,
		"p": result.Weights,
	})
}

func runCheckpoints(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkpoints", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	limit := fs.Int("limit", 20, "maximum checkpoints to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	infos, err := client.Checkpoints(ctx)
	if err != nil {
		return err
	}
	if *limit > 0 && len(infos) > *limit {
		infos = infos[:*limit]
	}
	if len(infos) == 0 {
		fmt.Println("no checkpoints")
		return nil
	}
	for _, info := range infos {
		age := info.CreatedAtUTC
		if created, err := time.Parse(time.RFC3339Nano, info.CreatedAtUTC); err == nil {
			age = humanize.Time(created)
		}
		fmt.Printf("%s  %-18s %10s  %s\n", info.ID, info.Variant, humanize.Bytes(uint64(info.SizeBytes)), age)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	checkpointID := fs.String("checkpoint", "", "checkpoint id to export")
	outPath := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *checkpointID == "" {
		return usageError("export requires -checkpoint")
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	params, err := client.ExportParameters(ctx, *checkpointID)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return err
	}
	if *outPath == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(*outPath, payload, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported checkpoint=%s to %s (%s)\n", *checkpointID, *outPath, humanize.Bytes(uint64(len(payload))))
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	inPath := fs.String("in", "", "parameter blob file to import")
	checkpointID := fs.String("checkpoint", "", "checkpoint id (default random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return usageError("import requires -in")
	}

	params, err := loadPolicyParams(*inPath)
	if err != nil {
		return err
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.ImportParameters(ctx, mixapi.ImportRequest{CheckpointID: *checkpointID, Params: params})
	if err != nil {
		return err
	}
	fmt.Printf("imported %s checkpoint=%s layers=%d\n", summary.Name, summary.CheckpointID, summary.LayerCount)
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mixnet.db", "sqlite database path")
	checkpointID := fs.String("checkpoint", "", "checkpoint id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *checkpointID == "" {
		return usageError("delete requires -checkpoint")
	}

	client, err := mixapi.New(mixapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.DeleteCheckpoint(ctx, *checkpointID); err != nil {
		return err
	}
	fmt.Printf("deleted checkpoint=%s\n", *checkpointID)
	return nil
}

func runActivations(args []string) error {
	fs := flag.NewFlagSet("activations", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range nn.ListActivations() {
		fmt.Println(name)
	}
	return nil
}

func usageError(message string) error {
	return fmt.Errorf("%s\nusage: mixnetctl <init|build|eval|checkpoints|export|import|delete|activations> [flags]", message)
}
