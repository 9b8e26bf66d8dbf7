package cmd

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/stft-explainer/configs"
	"github.com/RyanBlaney/stft-explainer/explainer"
	"github.com/RyanBlaney/stft-explainer/logging"
	"github.com/RyanBlaney/stft-explainer/transcode"
)

// openSession builds a session from cfg and loads input, which is either a
// bundled sample name or a file path. An empty input loads the default sample.
func openSession(ctx context.Context, cfg *configs.Config, input string) (*explainer.Session, error) {
	logger := logging.WithFields(logging.Fields{"component": "explainer_session"})

	decoder := transcode.NewDecoder(&cfg.Decoder)
	session, err := explainer.NewSession(decoder, cfg.SessionOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("invalid analysis settings: %w", err)
	}

	if input == "" {
		input = string(explainer.DefaultSample)
	}

	if sample, err := explainer.ParseSampleFile(input); err == nil {
		ctx = logging.ContextWithFields(ctx, logging.Fields{"sample": sample.DisplayName()})
		return session, session.LoadSample(ctx, sample)
	}

	return session, session.LoadFile(ctx, input)
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
