package scenario

import (
	"context"

	"github.com/ceigel/open-orders/exchanges/kraken"
	"github.com/ceigel/open-orders/log"
	"github.com/cucumber/godog"
)

// InitializeScenario returns a godog scenario initializer binding the step
// patterns to a fresh World per scenario
func InitializeScenario(client *kraken.Kraken) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		var w *World
		sc.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
			var err error
			w, err = NewWorld(client)
			if err != nil {
				return ctx, err
			}
			log.Debugf(log.ScenarioMgr, "Scenario %q started as %s", s.Name, w.ID)
			return ctx, nil
		})
		sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
			if err != nil {
				log.Errorf(log.ScenarioMgr, "Scenario %q failed: %v", s.Name, err)
			}
			return ctx, nil
		})

		sc.Step(StepPublicRequest, func(path string) error { return w.PublicRequest(path) })
		sc.Step(StepPrivateRequest, func(path string) error { return w.PrivateRequest(path) })
		sc.Step(StepSend, func(ctx context.Context) error { return w.Send(ctx) })
		sc.Step(StepStatus, func(status string) error { return w.ServerResponds(status) })
		sc.Step(StepFormat, func(kind string) error { return w.ResponseHasFormat(kind) })
	}
}

// Run executes the feature files in opts.Paths and returns ExitSuccess when
// every scenario passed, ExitFailure otherwise and ExitOptions when the
// options are unusable
func Run(ctx context.Context, opts Options) int {
	if opts.Client == nil {
		log.Errorln(log.ScenarioMgr, errNilClient)
		return ExitOptions
	}
	if len(opts.Paths) == 0 {
		log.Errorln(log.ScenarioMgr, errNoPaths)
		return ExitOptions
	}
	format := opts.Format
	if format == "" {
		format = "pretty"
	}

	log.Infof(log.ScenarioMgr, "Running features %v against %s", opts.Paths, opts.Client.Auth.APIURL)
	status := godog.TestSuite{
		Name:                "kraken",
		ScenarioInitializer: InitializeScenario(opts.Client),
		Options: &godog.Options{
			Format:         format,
			Paths:          opts.Paths,
			Tags:           opts.Tags,
			Strict:         opts.Strict,
			Output:         opts.Output,
			Concurrency:    1,
			DefaultContext: ctx,
		},
	}.Run()

	switch status {
	case ExitSuccess:
		log.Infoln(log.ScenarioMgr, "All scenarios passed")
	case ExitFailure:
		log.Errorln(log.ScenarioMgr, "One or more scenarios failed")
	}
	return status
}
