// Package awsprofile reads answer defaults from the local AWS configuration:
// the active profile and its region, the caller's account, and the set of
// known regions.
package awsprofile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/aws/aws-sdk-go/aws/endpoints"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
)

// ErrUnknownRegion indicates a region not present in any known partition.
var ErrUnknownRegion = errors.New("unknown AWS region")

// ErrInvalidAccount indicates a value that is not a 12 digit account ID.
var ErrInvalidAccount = errors.New("invalid AWS account ID")

// Defaults are the answer defaults found in the AWS configuration.
// Empty fields were not configured.
type Defaults struct {
	Profile string
	Region  string
}

// Resolver reads the AWS shared configuration.
type Resolver struct {
	logger *slog.Logger
	getenv func(string) string

	// newSTS is replaced in tests.
	newSTS func(*session.Session) stsiface.STSAPI
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		logger: logger,
		getenv: os.Getenv,
		newSTS: func(s *session.Session) stsiface.STSAPI { return sts.New(s) },
	}
}

// Profile returns profile, or AWS_PROFILE when profile is empty.
func (r *Resolver) Profile(profile string) string {
	if profile != "" {
		return profile
	}
	return r.getenv("AWS_PROFILE")
}

// SharedDefaults resolves the profile and its region from the environment
// and the shared config files. It never contacts AWS. A profile missing from
// the shared config yields no region.
func (r *Resolver) SharedDefaults(profile string) Defaults {
	d := Defaults{Profile: r.Profile(profile)}

	sess, err := r.session(d.Profile, "")
	if err != nil {
		r.logger.Debug("aws shared config unavailable", "profile", d.Profile, "error", err)
		return d
	}
	d.Region = aws.StringValue(sess.Config.Region)

	r.logger.Debug("aws shared config resolved", "profile", d.Profile, "region", d.Region)
	return d
}

// CallerAccount returns the account ID of the credentials for profile,
// asking STS GetCallerIdentity.
func (r *Resolver) CallerAccount(ctx context.Context, profile, region string) (string, error) {
	sess, err := r.session(r.Profile(profile), region)
	if err != nil {
		return "", fmt.Errorf("create aws session: %w", err)
	}

	out, err := r.newSTS(sess).GetCallerIdentityWithContext(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("identify caller: %w", err)
	}

	identity, err := arn.Parse(aws.StringValue(out.Arn))
	if err != nil {
		return "", fmt.Errorf("parse caller arn: %w", err)
	}
	if err := ValidateAccount(identity.AccountID); err != nil {
		return "", err
	}
	return identity.AccountID, nil
}

func (r *Resolver) session(profile, region string) (*session.Session, error) {
	opts := session.Options{
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	}
	if region != "" {
		opts.Config.Region = aws.String(region)
	}
	return session.NewSessionWithOptions(opts)
}

// KnownRegions returns every region of the standard partitions, sorted.
func KnownRegions() []string {
	var regions []string
	for _, p := range endpoints.DefaultPartitions() {
		for id := range p.Regions() {
			regions = append(regions, id)
		}
	}
	sort.Strings(regions)
	return slices.Compact(regions)
}

// ValidateRegion reports ErrUnknownRegion for a region outside the known
// partitions. New regions appear before the SDK learns about them, so
// callers treat this as a warning.
func ValidateRegion(region string) error {
	for _, p := range endpoints.DefaultPartitions() {
		if _, ok := p.Regions()[region]; ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRegion, region)
}

// ValidateAccount reports ErrInvalidAccount unless account is 12 digits.
func ValidateAccount(account string) error {
	if len(account) != 12 {
		return fmt.Errorf("%w: %q must be 12 digits", ErrInvalidAccount, account)
	}
	for _, c := range account {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q must be 12 digits", ErrInvalidAccount, account)
		}
	}
	return nil
}
