package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	grpcAdapter "github.com/compraventa/marketplace-service/internal/adapter/grpc"
	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"gopkg.in/yaml.v3"
)

// errRejected signals a completed check with a negative result.
var errRejected = errors.New("rejected")

type options struct {
	wordlist string
	addr     string
	token    string
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "modcheck",
		Short:         "Check listing text and drafts against the marketplace rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.wordlist, "wordlist", "", "YAML wordlist to use instead of the built-in one")
	root.PersistentFlags().StringVar(&opts.addr, "addr", "", "check against a running server's gRPC address instead of locally")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MODCHECK_TOKEN"), "bearer token for remote draft validation")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")

	root.AddCommand(&cobra.Command{
		Use:   "text <text>",
		Short: "Run the profanity matcher over a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runText(cmd, opts, args[0])
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "draft <file.yaml>",
		Short: "Validate a listing draft described in YAML",
		Long: `Validate a listing draft. The YAML file holds the draft fields
(title, description, price, category, condition, province, city,
postal_code) and an "images" list of file paths relative to the YAML file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd, opts, args[0])
		},
	})
	return root
}

func runText(cmd *cobra.Command, opts *options, text string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var res moderation.Result
	if opts.addr != "" {
		client, closeConn, err := dial(opts.addr)
		if err != nil {
			return err
		}
		defer closeConn()
		resp, err := client.CheckText(ctx, &grpcAdapter.CheckTextRequest{Text: text})
		if err != nil {
			return fmt.Errorf("remote check: %w", err)
		}
		res = resp.Result
	} else {
		matcher, err := newMatcher(opts.wordlist)
		if err != nil {
			return err
		}
		res = matcher.CheckText(text)
	}

	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Valid {
		return errRejected
	}
	return nil
}

func runDraft(cmd *cobra.Command, opts *options, path string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	d, err := loadDraft(path)
	if err != nil {
		return err
	}

	var verdict domain.Verdict
	if opts.addr != "" {
		client, closeConn, err := dial(opts.addr)
		if err != nil {
			return err
		}
		defer closeConn()
		if opts.token != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+opts.token)
		}
		resp, err := client.ValidateDraft(ctx, &grpcAdapter.ValidateDraftRequest{Draft: d})
		if err != nil {
			return fmt.Errorf("remote validation: %w", err)
		}
		verdict = resp.Verdict
	} else {
		matcher, err := newMatcher(opts.wordlist)
		if err != nil {
			return err
		}
		log := logger.NewNop()
		orch := validation.NewOrchestrator(matcher, location.Default(), validation.NewMediaValidator(nil, log), nil, log)
		verdict = orch.ValidateListing(ctx, d)
	}

	if err := printJSON(cmd.OutOrStdout(), verdict); err != nil {
		return err
	}
	if !verdict.Valid {
		return errRejected
	}
	return nil
}

type draftFile struct {
	domain.Draft `yaml:",inline"`
	Images       []string `yaml:"images"`
}

// loadDraft reads the YAML draft and the image files it lists.
func loadDraft(path string) (domain.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("read draft: %w", err)
	}
	var f draftFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Draft{}, fmt.Errorf("parse draft %s: %w", path, err)
	}

	d := f.Draft
	dir := filepath.Dir(path)
	for _, p := range f.Images {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("read image: %w", err)
		}
		d.Images = append(d.Images, domain.Image{Name: filepath.Base(p), Data: data})
	}
	return d, nil
}

func newMatcher(wordlistPath string) (*moderation.Matcher, error) {
	wl := moderation.DefaultWordlist()
	if wordlistPath != "" {
		var err error
		if wl, err = moderation.LoadWordlist(wordlistPath); err != nil {
			return nil, err
		}
	}
	return moderation.FromWordlist(wl, logger.NewNop())
}

func dial(addr string) (*grpcAdapter.ModerationClient, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return grpcAdapter.NewModerationClient(conn), func() { _ = conn.Close() }, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
