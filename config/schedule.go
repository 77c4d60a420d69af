package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/deploysched/deploysched/internal/domain/model"
)

// ScheduleConfig controls how schedule fields are interpreted and what new requests start with.
type ScheduleConfig struct {
	// Timezone is the IANA zone schedule_date and schedule_time are read in. "Local" uses the host zone.
	Timezone string `env:"SCHEDULE_TIMEZONE" envDefault:"Local"`

	// KnownServers is offered to operators as target_server suggestions. Other values are still accepted.
	KnownServers []string `env:"SCHEDULE_KNOWN_SERVERS" envDefault:"PROD-01,PROD-02,STAGING-01"`

	DefaultJenkinsURL string `env:"SCHEDULE_DEFAULT_JENKINS_URL" envDefault:""`

	DefaultBranch string `env:"SCHEDULE_DEFAULT_BRANCH" envDefault:"main"`

	// DefaultVersionMode preselects the version mode of a new request.
	DefaultVersionMode model.VersionMode `env:"SCHEDULE_DEFAULT_VERSION_MODE" envDefault:"manual"`
}

// Sanitize trims values and drops blank server names.
func (c *ScheduleConfig) Sanitize() {
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	c.DefaultJenkinsURL = strings.TrimSpace(c.DefaultJenkinsURL)
	c.DefaultBranch = strings.TrimSpace(c.DefaultBranch)
	c.DefaultVersionMode = model.VersionMode(strings.ToLower(strings.TrimSpace(string(c.DefaultVersionMode))))

	servers := make([]string, 0, len(c.KnownServers))
	for _, s := range c.KnownServers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	c.KnownServers = servers
}

// Validate checks the timezone and the default version mode.
func (c *ScheduleConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := model.ParseVersionMode(string(c.DefaultVersionMode)); err != nil {
		return fmt.Errorf("SCHEDULE_DEFAULT_VERSION_MODE: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FormDefaults returns the values a new request starts with.
func (c *ScheduleConfig) FormDefaults() model.FormDefaults {
	return model.FormDefaults{
		AppBranch:    c.DefaultBranch,
		JenkinsURL:   c.DefaultJenkinsURL,
		VersionMode:  c.DefaultVersionMode,
		KnownServers: append([]string(nil), c.KnownServers...),
	}
}
