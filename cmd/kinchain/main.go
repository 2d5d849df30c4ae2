package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/san-kum/kinchain/internal/config"
	"github.com/san-kum/kinchain/internal/experiment"
	"github.com/san-kum/kinchain/internal/export"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/metrics"
	"github.com/san-kum/kinchain/internal/observability"
	"github.com/san-kum/kinchain/internal/optim"
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
	"github.com/san-kum/kinchain/internal/storage"
	"github.com/san-kum/kinchain/internal/viz"
	"github.com/spf13/cobra"
)

var (
	settings  config.Settings
	logger    zerolog.Logger
	dataDir   string
	logLevel  string
	themeName string

	chainSource string
	positions   string
	clamp       bool
	dt          float64
	duration    float64
	endJoint    string
	metricNames []string
	svgPath     string
	plane       string
	jsonOut     bool
	live        bool
	period      float64
	gridSteps   int
	target      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kinchain",
		Short:         "kinematic chain lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings()
			if err != nil {
				return err
			}
			settings = s
			if !cmd.Flags().Changed("data") {
				dataDir = s.DataDir
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = s.LogLevel
			}
			if !cmd.Flags().Changed("theme") {
				themeName = s.Theme
			}
			logger = observability.NewLogger("kinchain", logLevel, nil)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "terminal theme")

	fkCmd := &cobra.Command{
		Use:   "fk [preset|file]",
		Short: "set joint positions and print world poses",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFK,
	}
	fkCmd.Flags().StringVar(&positions, "positions", "", "comma separated joint positions in chain order")
	fkCmd.Flags().BoolVar(&clamp, "clamp", false, "clamp positions into joint limits")
	fkCmd.Flags().StringVar(&svgPath, "svg", "", "write the posed chain to an SVG file")
	fkCmd.Flags().StringVar(&plane, "plane", "xz", "SVG projection plane (xz, xy, yz)")

	treeCmd := &cobra.Command{
		Use:   "tree [preset|file]",
		Short: "print chain structure",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTree,
	}

	playCmd := &cobra.Command{
		Use:   "play [preset|file]",
		Short: "play a trajectory and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlay,
	}
	playCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from chain file)")
	playCmd.Flags().Float64Var(&duration, "time", 0, "duration (default from chain file)")
	playCmd.Flags().BoolVar(&clamp, "clamp", false, "clamp commanded positions into joint limits")
	playCmd.Flags().StringVar(&endJoint, "end", "", "joint whose path is recorded")
	playCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to compute (default all)")
	playCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as JSON instead of plots")
	playCmd.Flags().BoolVar(&live, "live", false, "animate the playback in the terminal")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset|file]",
		Short: "sweep every movable joint through its range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	sweepCmd.Flags().Float64Var(&period, "period", 2.0, "sweep period")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot joint positions and end path of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the end path of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xz", "projection plane (xz, xy, yz)")
	exportSVGCmd.Flags().StringVarP(&svgPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s %d joints, %s\n", name, len(cfg.Joints), cfg.Playback.Trajectory)
			}
			return nil
		},
	}

	workspaceCmd := &cobra.Command{
		Use:   "workspace [preset|file]",
		Short: "sample joint space on a grid and report reachable bounds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWorkspace,
	}
	workspaceCmd.Flags().IntVar(&gridSteps, "steps", 9, "grid values per joint")
	workspaceCmd.Flags().StringVar(&endJoint, "end", "", "joint whose position is sampled")
	workspaceCmd.Flags().StringVar(&target, "target", "", "report the sample nearest to x,y,z")

	jogCmd := &cobra.Command{
		Use:   "jog [preset|file]",
		Short: "move joints interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runJog,
	}

	for _, c := range []*cobra.Command{fkCmd, treeCmd, playCmd, sweepCmd, workspaceCmd, jogCmd} {
		c.Flags().StringVarP(&chainSource, "chain", "c", "", "preset name or chain file (yaml, toml)")
	}

	rootCmd.AddCommand(fkCmd, treeCmd, playCmd, sweepCmd, runsCmd, plotCmd, exportJSONCmd, exportSVGCmd, presetsCmd, workspaceCmd, jogCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the chain from the positional argument or --chain,
// defaulting to the planar2 preset.
func loadConfig(args []string) (*config.Config, error) {
	source := chainSource
	if len(args) > 0 {
		source = args[0]
	}
	if source == "" {
		source = "planar2"
	}
	cfg, err := experiment.ResolveChain(source)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildChain(args []string) (*config.Config, *kinematics.Chain, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, nil, err
	}
	_, chain, err := cfg.Build(kinematics.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return cfg, chain, nil
}

func parsePositions(raw string) ([]float64, error) {
	fields := strings.Split(raw, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runFK(cmd *cobra.Command, args []string) error {
	cfg, chain, err := buildChain(args)
	if err != nil {
		return err
	}

	if positions != "" {
		q, err := parsePositions(positions)
		if err != nil {
			return err
		}
		if clamp {
			err = chain.SetJointPositionsClamped(q)
		} else {
			err = chain.SetJointPositions(q)
		}
		if err != nil {
			return err
		}
	}

	poses := chain.UpdateTransforms()
	fmt.Println(viz.PoseTable(chain, poses, viz.NewStyles(viz.GetTheme(themeName))))

	if svgPath != "" {
		p, err := spatial.ParsePlane(plane)
		if err != nil {
			return err
		}
		svg := export.ChainSVG(chain, poses, p, 600, 600)
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		logger.Info().Str("chain", cfg.Name).Str("path", svgPath).Msg("svg written")
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	cfg, chain, err := buildChain(args)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d joints, %d dof\n", cfg.Name, chain.Len(), chain.Dof())
	fmt.Println(chain.String())
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dt") {
		cfg.Playback.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Playback.Duration = duration
	}
	if cmd.Flags().Changed("clamp") {
		cfg.Playback.Clamp = clamp
	}
	if endJoint != "" {
		cfg.Playback.End = endJoint
	}

	exp := experiment.New(cfg, logger)
	if err := exp.Setup(experiment.NewRegistry(), metricNames); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, stepErr := range result.Errors {
		logger.Warn().Err(stepErr).Msg("playback stopped early")
	}

	meta := exp.Metadata()
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	if live {
		m := viz.NewReplay(exp.Chain(), cfg.Name, result.Frames, settings.FPS, viz.GetTheme(themeName))
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}

	if jsonOut {
		meta.ID = runID
		return storage.ExportJSON(os.Stdout, meta, result)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	fmt.Println()
	for _, chart := range viz.PlotEnd(result.Frames, result.EndJoint) {
		fmt.Println(chart)
		fmt.Println()
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, chain, err := buildChain(args)
	if err != nil {
		return err
	}

	batch := playback.NewBatch()
	for _, n := range chain.Movable() {
		if _, driven := n.MimicParent(); driven {
			continue
		}
		joint := n.Name()
		batch.Add(playback.Job{
			Name: joint,
			Build: func() (*kinematics.Chain, error) {
				_, c, err := cfg.Build()
				return c, err
			},
			Traj: func(c *kinematics.Chain) (playback.Trajectory, error) {
				return playback.NewSweep(c, joint, period)
			},
			Metrics: func() []playback.Metric {
				return []playback.Metric{metrics.NewPathLength(), metrics.NewMaxReach()}
			},
		})
	}
	if batch.Len() == 0 {
		return fmt.Errorf("chain %s has no independently movable joints", cfg.Name)
	}

	results, err := batch.Run(context.Background(), playback.Config{Dt: dt, Duration: period})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOINT\tFRAMES\tPATH\tREACH\tERRORS")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%d\n",
			batch.Jobs()[i].Name,
			len(r.Frames),
			r.Metrics["path_length"],
			r.Metrics["max_reach"],
			len(r.Errors),
		)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHAIN\tTIME\tDURATION\tDT\tTRAJ\tFRAMES\tERRORS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\t%d\n",
			run.ID,
			run.Chain,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Trajectory,
			run.Frames,
			len(run.Errors),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("chain: %s\n", meta.Chain)
	fmt.Printf("frames: %d\n\n", len(frames))

	for _, chart := range viz.PlotJoints(frames, meta.Joints, 6) {
		fmt.Println(chart)
		fmt.Println()
	}
	for _, chart := range viz.PlotEnd(frames, meta.EndJoint) {
		fmt.Println(chart)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	result := &playback.Result{
		Frames:   frames,
		Metrics:  meta.Metrics,
		EndJoint: meta.EndJoint,
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	p, err := spatial.ParsePlane(plane)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	points := make([]spatial.Vec, len(frames))
	for i, f := range frames {
		points[i] = f.End
	}
	svg := export.TraceSVG(points, p, 600, 600, "#2e86de")
	if svg == "" {
		return fmt.Errorf("run %s has fewer than two frames", args[0])
	}
	if svgPath == "" {
		_, err = fmt.Print(svg)
		return err
	}
	return os.WriteFile(svgPath, []byte(svg), 0644)
}

func runWorkspace(cmd *cobra.Command, args []string) error {
	cfg, chain, err := buildChain(args)
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch(chain, gridSteps)
	if err != nil {
		return err
	}
	if endJoint != "" {
		if err := g.TrackJoint(endJoint); err != nil {
			return err
		}
	}

	var cost optim.Cost
	if target != "" {
		v, err := parsePositions(target)
		if err != nil {
			return err
		}
		if len(v) != 3 {
			return fmt.Errorf("target needs x,y,z, got %d values", len(v))
		}
		cost = optim.DistanceTo(spatial.Vec{X: v[0], Y: v[1], Z: v[2]})
	}

	logger.Debug().Str("chain", cfg.Name).Int("samples", g.Size()).Msg("workspace search started")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := g.Search(ctx, cost)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d samples of %s (%d out of limits)\n", cfg.Name, res.Samples, res.EndJoint, res.Skipped)
	fmt.Printf("  min   %.4f %.4f %.4f\n", res.Bounds.Min.X, res.Bounds.Min.Y, res.Bounds.Min.Z)
	fmt.Printf("  max   %.4f %.4f %.4f\n", res.Bounds.Max.X, res.Bounds.Max.Y, res.Bounds.Max.Z)
	fmt.Printf("  reach %.4f .. %.4f\n", res.MinReach, res.MaxReach)
	if res.Best != nil {
		fmt.Printf("\nnearest sample (%.4f away):\n", res.BestCost)
		for i, name := range chain.JointNames() {
			fmt.Printf("  %-14s %9.4f\n", name, res.Best[i])
		}
	}
	return nil
}

func runJog(cmd *cobra.Command, args []string) error {
	cfg, chain, err := buildChain(args)
	if err != nil {
		return err
	}
	m := viz.NewJog(chain, cfg.Name, viz.GetTheme(themeName))
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
