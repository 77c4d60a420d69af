package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploysched/deploysched/internal/client"
	"github.com/deploysched/deploysched/internal/domain/model"
	"github.com/deploysched/deploysched/internal/registry"
)

// jobView is a job with its display status, as printed by the CLI.
type jobView struct {
	model.Job `yaml:",inline"`
	Display   model.StatusView `json:"display" yaml:"display"`
}

type jobDetail struct {
	Job        jobView              `json:"job"        yaml:"job"`
	Executions []model.JobExecution `json:"executions" yaml:"executions"`
}

func viewOf(j model.Job) jobView {
	return jobView{Job: j, Display: model.ProjectStatus(j.Status)}
}

func versionLabel(j model.Job) string {
	if j.Version == "" {
		return string(j.VersionMode)
	}
	return string(j.VersionMode) + " " + j.Version
}

func (c *commandContext) connect() (apiClient, *registry.JobRegistry, error) {
	api, err := c.NewClient(c.Config.Client)
	if err != nil {
		return nil, nil, err
	}
	reg, err := registry.New(registry.Options{Client: api, Logger: c.Logger, Now: c.Now})
	if err != nil {
		return nil, nil, err
	}
	return api, reg, nil
}

// splitID takes the leading positional id off args so flags may follow it.
func splitID(name string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("usage: %s <id> [flags]", name)
	}
	return strings.TrimSpace(args[0]), args[1:], nil
}

type jobsListOptions struct {
	Status *model.JobStatus
	App    string
	Output outputFormat
	Query  string
}

func parseJobsListFlags(cmdCtx *commandContext, args []string) (jobsListOptions, error) {
	fs := flag.NewFlagSet("jobs-list", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)

	var status, output string
	opts := jobsListOptions{}
	fs.StringVar(&status, "status", "", "Only show jobs with this status (pending, completed, failed)")
	fs.StringVar(&opts.App, "app", "", "Only show jobs for this application")
	fs.StringVar(&output, "output", "table", "Output format: table, json or yaml")
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the JSON listing")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if status != "" {
		s, err := model.ParseJobStatus(status)
		if err != nil {
			return opts, err
		}
		opts.Status = &s
	}
	format, err := parseOutputFormat(output)
	if err != nil {
		return opts, err
	}
	opts.Output = format
	if err := compileQuery(opts.Query); err != nil {
		return opts, err
	}
	if opts.Query != "" && opts.Output == outputTable {
		opts.Output = outputJSON
	}
	return opts, nil
}

func runJobsList(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobsListFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	_, reg, err := cmdCtx.connect()
	if err != nil {
		return err
	}

	snap, err := reg.Refresh(cmdCtx.Ctx)
	if err != nil {
		return err
	}
	for _, w := range snap.Warnings {
		fmt.Fprintf(cmdCtx.Err, "warning: %s\n", w)
	}

	views := make([]jobView, 0, len(snap.Jobs))
	for _, e := range snap.Entries() {
		if opts.Status != nil && e.Job.Status != *opts.Status {
			continue
		}
		if opts.App != "" && e.Job.AppName != opts.App {
			continue
		}
		views = append(views, jobView{Job: e.Job, Display: e.Status})
	}

	if opts.Query != "" {
		out, err := applyQuery(opts.Query, views)
		if err != nil {
			return err
		}
		return render(cmdCtx.Out, opts.Output, out, nil)
	}

	return render(cmdCtx.Out, opts.Output, views, func(tw *tabwriter.Writer) error {
		fmt.Fprintln(tw, "ID\tAPP\tVERSION\tSERVER\tSCHEDULED\tSTATUS")
		for _, v := range views {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s %s\t%s\n",
				v.ID, v.AppName, versionLabel(v.Job), v.TargetServer, v.ScheduleDate, v.ScheduleTime, v.Display.Label)
		}
		return nil
	})
}

func runJobsShow(cmdCtx *commandContext, args []string) error {
	id, rest, err := splitID("jobs-show", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("jobs-show", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	output := fs.String("output", "table", "Output format: table, json or yaml")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}

	api, _, err := cmdCtx.connect()
	if err != nil {
		return err
	}
	job, err := api.Get(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	execs, err := api.Executions(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}

	detail := jobDetail{Job: viewOf(*job), Executions: execs}
	return render(cmdCtx.Out, format, detail, func(tw *tabwriter.Writer) error {
		j := detail.Job
		rows := [][2]string{
			{"ID", j.ID},
			{"Application", j.AppName},
			{"Version", versionLabel(j.Job)},
			{"Target server", j.TargetServer},
			{"Branch", j.AppBranch},
			{"Skip clone", fmt.Sprint(j.SkipClone)},
			{"Skip build", fmt.Sprint(j.SkipBuild)},
			{"Scheduled", j.ScheduleDate + " " + j.ScheduleTime},
			{"Jenkins", j.JenkinsURL + " as " + j.JenkinsUser},
			{"Status", j.Display.Label},
		}
		for _, r := range rows {
			fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
		}
		if len(execs) == 0 {
			return nil
		}
		fmt.Fprintln(tw, "\nEXECUTED\tOUTCOME\tRESPONSE")
		for _, e := range execs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ExecutedAt.Format("2006-01-02 15:04:05Z07:00"), e.Outcome, firstLine(e.ResponseText))
		}
		return nil
	})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// requestFlags are the per-field flags shared by jobs-create and jobs-edit.
type requestFlags struct {
	file         string
	app          string
	mode         string
	version      string
	server       string
	branch       string
	date         string
	clock        string
	jenkinsURL   string
	jenkinsUser  string
	jenkinsToken string
	skipClone    bool
	skipBuild    bool
}

func (f *requestFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "f", "", "YAML or JSON request file; flags override its fields")
	fs.StringVar(&f.app, "app", "", "Application name")
	fs.StringVar(&f.mode, "version-mode", "", "Version mode: latest, list, manual, head or hash")
	fs.StringVar(&f.version, "version", "", "Literal version (manual and hash modes)")
	fs.StringVar(&f.server, "server", "", "Target server")
	fs.StringVar(&f.branch, "branch", "", "Application branch")
	fs.StringVar(&f.date, "date", "", "Schedule date, YYYY-MM-DD")
	fs.StringVar(&f.clock, "time", "", "Schedule time, HH:MM")
	fs.StringVar(&f.jenkinsURL, "jenkins-url", "", "Jenkins base URL")
	fs.StringVar(&f.jenkinsUser, "jenkins-user", "", "Jenkins user")
	fs.StringVar(&f.jenkinsToken, "jenkins-token", "", "Jenkins API token")
	fs.BoolVar(&f.skipClone, "skip-clone", true, "Skip the clone stage")
	fs.BoolVar(&f.skipBuild, "skip-build", false, "Skip the build stage")
}

// apply overlays the file and then every flag the operator actually set.
// Switching to a mode that forbids a version drops an inherited version unless -version is given.
func (f *requestFlags) apply(fs *flag.FlagSet, raw *model.RawJobRequest) error {
	inherited := raw.Version
	if f.file != "" {
		buf, err := os.ReadFile(f.file)
		if err != nil {
			return fmt.Errorf("read request file: %w", err)
		}
		if err := yaml.Unmarshal(buf, raw); err != nil {
			return fmt.Errorf("parse request file %s: %w", f.file, err)
		}
	}

	var modeSet, versionSet bool
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "app":
			raw.AppName = f.app
		case "version-mode":
			modeSet = true
			raw.VersionMode = model.VersionMode(f.mode)
		case "version":
			versionSet = true
			raw.Version = f.version
		case "server":
			raw.TargetServer = f.server
		case "branch":
			raw.AppBranch = f.branch
		case "date":
			raw.ScheduleDate = f.date
		case "time":
			raw.ScheduleTime = f.clock
		case "jenkins-url":
			raw.JenkinsURL = f.jenkinsURL
		case "jenkins-user":
			raw.JenkinsUser = f.jenkinsUser
		case "jenkins-token":
			raw.JenkinsToken = f.jenkinsToken
		case "skip-clone":
			v := f.skipClone
			raw.SkipClone = &v
		case "skip-build":
			v := f.skipBuild
			raw.SkipBuild = &v
		}
	})

	if modeSet && !versionSet && raw.Version == inherited {
		if mode, err := model.ParseVersionMode(f.mode); err == nil && model.RequirementFor(mode) == model.VersionForbidden {
			raw.Version = ""
		}
	}
	return nil
}

// validateLocally runs the same validation the service runs, so operators see errors before a round trip.
func validateLocally(cmdCtx *commandContext, raw model.RawJobRequest) (model.JobRequest, error) {
	loc, err := cmdCtx.Config.Schedule.Location()
	if err != nil {
		return model.JobRequest{}, err
	}
	req, err := model.ValidateJobRequest(raw, model.ValidateOptions{Now: cmdCtx.Now(), Location: loc})
	if err != nil {
		return model.JobRequest{}, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

func (c *commandContext) printJob(job *model.Job) error {
	v := viewOf(*job)
	fmt.Fprintf(c.Out, "%s\t%s\t%s\t%s %s\t%s\n",
		v.ID, v.AppName, versionLabel(v.Job), v.ScheduleDate, v.ScheduleTime, v.Display.Label)
	return nil
}

func runJobsCreate(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("jobs-create", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	var rf requestFlags
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	api, reg, err := cmdCtx.connect()
	if err != nil {
		return err
	}

	defaults := cmdCtx.Config.Schedule.FormDefaults()
	if view, err := api.FormDefaults(cmdCtx.Ctx); err == nil {
		if view.Request.AppBranch != "" {
			defaults.AppBranch = view.Request.AppBranch
		}
		if view.Request.JenkinsURL != "" {
			defaults.JenkinsURL = view.Request.JenkinsURL
		}
		if view.Request.VersionMode != "" {
			defaults.VersionMode = view.Request.VersionMode
		}
	} else {
		cmdCtx.Logger.Warn("could not load form defaults from the service; using local config", "error", err)
	}

	raw := model.DefaultRawJobRequest(defaults)
	if err := rf.apply(fs, &raw); err != nil {
		return err
	}
	req, err := validateLocally(cmdCtx, raw)
	if err != nil {
		return err
	}

	job, err := reg.Create(cmdCtx.Ctx, req)
	if job == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmdCtx.Err, "warning: job created but listing is stale: %v\n", err)
	}
	return cmdCtx.printJob(job)
}

func runJobsEdit(cmdCtx *commandContext, args []string) error {
	id, rest, err := splitID("jobs-edit", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("jobs-edit", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	var rf requestFlags
	rf.register(fs)
	if err := fs.Parse(rest); err != nil {
		return err
	}

	api, reg, err := cmdCtx.connect()
	if err != nil {
		return err
	}
	current, err := api.Get(cmdCtx.Ctx, id)
	if err != nil {
		return err
	}
	raw := current.Request().Raw()
	if err := rf.apply(fs, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw.JenkinsToken) == "" {
		return errors.New("-jenkins-token is required: the stored token is never returned by the service")
	}
	req, err := validateLocally(cmdCtx, raw)
	if err != nil {
		return err
	}

	job, err := reg.Update(cmdCtx.Ctx, id, req)
	if job == nil {
		if client.IsNotEditable(err) {
			return fmt.Errorf("job %s is %s and can no longer be edited: %w", id, current.Status, err)
		}
		return err
	}
	if err != nil {
		fmt.Fprintf(cmdCtx.Err, "warning: job updated but listing is stale: %v\n", err)
	}
	return cmdCtx.printJob(job)
}

func runJobsDelete(cmdCtx *commandContext, args []string) error {
	id, rest, err := splitID("jobs-delete", args)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("jobs-delete", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	yes := fs.Bool("yes", false, "Delete without asking for confirmation")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	_, reg, err := cmdCtx.connect()
	if err != nil {
		return err
	}

	if !*yes {
		if err := confirmDelete(cmdCtx, id); err != nil {
			return err
		}
	}

	if err := reg.Remove(cmdCtx.Ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmdCtx.Out, "deleted %s\n", id)
	return nil
}

func confirmDelete(cmdCtx *commandContext, id string) error {
	fmt.Fprintf(cmdCtx.Out, "Permanently delete job %s and its execution history? [y/N]: ", id)
	resp, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && resp == "" {
		return errors.New("aborted by user")
	}
	switch strings.ToLower(strings.TrimSpace(resp)) {
	case "y", "yes":
		return nil
	default:
		return errors.New("aborted by user")
	}
}

func runVersionModes(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("version-modes", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	output := fs.String("output", "table", "Output format: table, json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := parseOutputFormat(*output)
	if err != nil {
		return err
	}

	api, _, err := cmdCtx.connect()
	if err != nil {
		return err
	}
	modes, err := api.VersionModes(cmdCtx.Ctx)
	if err != nil {
		return err
	}

	return render(cmdCtx.Out, format, modes, func(tw *tabwriter.Writer) error {
		fmt.Fprintln(tw, "MODE\tVERSION\tHINT")
		for _, m := range modes {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Mode, m.Requirement, m.Hint)
		}
		return nil
	})
}
