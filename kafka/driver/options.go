package driver

import (
	stderrors "errors"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/nagyist/reactive-kafka/kafka"
	"github.com/nagyist/reactive-kafka/protocol"
)

var (
	// ErrNoBrokers is returned when no brokers are configured.
	ErrNoBrokers = kafka.ErrNoBrokers

	// ErrNoGroupID is returned when no consumer group ID is configured.
	ErrNoGroupID = kafka.ErrNoGroupID
)

// Config contains the driver's own configuration, the part that's
// naturally expressed as data rather than as a functional option
// (client options like TLS or SASL stay code, via WithClientOptions).
type Config struct {
	// Brokers is the list of Kafka broker addresses (required).
	Brokers []string `yaml:"brokers"`

	// GroupID is the consumer group ID (required).
	GroupID string `yaml:"group_id"`

	// Dispatcher names this driver instance in log lines, useful when a
	// process runs more than one.
	Dispatcher string `yaml:"dispatcher"`

	// PollTimeout bounds each PollFetches call issued while there is
	// outstanding demand.
	PollTimeout time.Duration `yaml:"poll_timeout"`

	// PollInterval is the period of the internal tick that drives
	// polling even with no new demand, so in-flight commit callbacks
	// keep making progress.
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	if c.GroupID == "" {
		return ErrNoGroupID
	}
	return nil
}

// settings is the resolved, validated configuration New builds from
// applied options.
type settings struct {
	brokers      []string
	groupID      string
	dispatcher   string
	pollTimeout  time.Duration
	pollInterval time.Duration
	clientOpts   []kgo.Opt
}

func (s *settings) validate() error {
	if len(s.brokers) == 0 {
		return ErrNoBrokers
	}
	if s.groupID == "" {
		return ErrNoGroupID
	}
	return nil
}

func (s *settings) createClient() (Client, error) {
	opts := append([]kgo.Opt{
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumerGroup(s.groupID),
	}, s.clientOpts...)
	return newKgoClient(opts...)
}

// Option configures a Driver. Options are applied in order, defaults
// first, so callers can override anything defaultOptions() sets.
type Option func(*Driver) error

func defaultOptions() []Option {
	return []Option{
		WithLogger(protocol.NopLogger{}),
		WithPollTimeout(500 * time.Millisecond),
		WithPollInterval(50 * time.Millisecond),
		WithDispatcher("default"),
	}
}

// WithConfig sets brokers, group ID, dispatcher name, and poll timing
// from a Config struct, the recommended way to configure a Driver loaded
// from YAML.
func WithConfig(cfg Config) Option {
	return func(d *Driver) error {
		if err := cfg.Validate(); err != nil {
			return stderrors.New("invalid driver config: " + err.Error())
		}
		d.settings.brokers = cfg.Brokers
		d.settings.groupID = cfg.GroupID
		if cfg.Dispatcher != "" {
			d.settings.dispatcher = cfg.Dispatcher
		}
		if cfg.PollTimeout > 0 {
			d.settings.pollTimeout = cfg.PollTimeout
		}
		if cfg.PollInterval > 0 {
			d.settings.pollInterval = cfg.PollInterval
		}
		return nil
	}
}

// WithBrokers sets the Kafka broker addresses.
func WithBrokers(brokers ...string) Option {
	return func(d *Driver) error {
		if len(brokers) == 0 {
			return stderrors.New("brokers cannot be empty")
		}
		d.settings.brokers = brokers
		return nil
	}
}

// WithGroupID sets the consumer group ID.
func WithGroupID(groupID string) Option {
	return func(d *Driver) error {
		if groupID == "" {
			return stderrors.New("group ID cannot be empty")
		}
		d.settings.groupID = groupID
		return nil
	}
}

// WithDispatcher names this driver instance in log lines.
func WithDispatcher(name string) Option {
	return func(d *Driver) error {
		if name == "" {
			return stderrors.New("dispatcher name cannot be empty")
		}
		d.settings.dispatcher = name
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger protocol.Logger) Option {
	return func(d *Driver) error {
		if logger == nil {
			return stderrors.New("logger cannot be nil")
		}
		d.log = logger
		return nil
	}
}

// WithPollTimeout sets how long each PollFetches call may block while
// demand is outstanding.
func WithPollTimeout(timeout time.Duration) Option {
	return func(d *Driver) error {
		if timeout <= 0 {
			return stderrors.New("poll timeout must be positive")
		}
		d.settings.pollTimeout = timeout
		return nil
	}
}

// WithPollInterval sets the period of the internal poll tick.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Driver) error {
		if interval <= 0 {
			return stderrors.New("poll interval must be positive")
		}
		d.settings.pollInterval = interval
		return nil
	}
}

// WithClientOptions passes extra franz-go client options straight
// through to kgo.NewClient — TLS, SASL, compression, and anything else
// the narrow Client interface deliberately doesn't wrap.
func WithClientOptions(opts ...kgo.Opt) Option {
	return func(d *Driver) error {
		d.settings.clientOpts = append(d.settings.clientOpts, opts...)
		return nil
	}
}

// WithAuditSink sets the sink notified, best-effort, when a commit
// comes back with an error.
func WithAuditSink(sink AuditSink) Option {
	return func(d *Driver) error {
		d.audit = sink
		return nil
	}
}

// WithClient injects a pre-built Client instead of letting Start build
// one from settings, bypassing broker/group validation. Intended for
// tests driving the mailbox loop against a stub.
func WithClient(client Client) Option {
	return func(d *Driver) error {
		if client == nil {
			return stderrors.New("client cannot be nil")
		}
		d.presetClient = client
		return nil
	}
}
