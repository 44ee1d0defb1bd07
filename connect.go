package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/config"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/deevus/maintenance-tui/session"
	"github.com/deevus/maintenance-tui/stream"
	"go.uber.org/zap"
)

// profile is one selected server with its session and REST services.
type profile struct {
	name        string
	server      config.ServerConfig
	session     *session.Session
	sessionPath string
	services    *internal.Services
}

func newProfile(name string, server config.ServerConfig) (*profile, error) {
	sess := session.New()
	path := session.DefaultPath(name)
	if err := sess.Load(path); err != nil {
		zap.S().Named("session").Warnw("ignoring saved session", "path", path, "error", err)
	}

	client, err := api.NewClient(api.ClientParams{
		BaseURL:            server.APIURL,
		Tokens:             sess,
		InsecureSkipVerify: server.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}

	return &profile{
		name:        name,
		server:      server,
		session:     sess,
		sessionPath: path,
		services:    internal.NewServices(client),
	}, nil
}

// authenticate makes sure the session holds a usable token. A configured
// static token wins; otherwise a saved session is refreshed, falling back
// to a password login. A saved token with nothing to refresh it is checked
// against the backend first and dropped when rejected.
func (p *profile) authenticate(ctx context.Context) error {
	lg := zap.S().Named("session")

	if p.server.Token != "" {
		p.session.SetToken(p.server.Token)
		return nil
	}

	if p.session.RefreshToken() != "" {
		err := p.session.Refresh(ctx, p.services.Auth)
		if err == nil {
			return p.save()
		}
		lg.Infow("saved session expired, logging in again", "error", err)
	} else if p.session.Authenticated() {
		_, err := p.services.Dashboard.Stats(ctx, api.DashboardFilters{})
		if !api.IsUnauthorized(err) {
			return nil
		}
		lg.Infow("saved token rejected, logging in again")
		p.session.Clear()
	}

	if p.server.Email == "" || p.server.Password == "" {
		return errors.New("no credentials configured for login")
	}
	if err := p.session.Login(ctx, p.services.Auth, p.server.Email, p.server.Password); err != nil {
		return err
	}
	return p.save()
}

func (p *profile) save() error {
	if err := p.session.Save(p.sessionPath); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (p *profile) streamURL() (string, error) {
	if p.server.Stream.URL != "" {
		return p.server.Stream.URL, nil
	}
	return stream.EndpointFromAPI(p.server.APIURL)
}

func (p *profile) newStream() (*stream.Client, error) {
	url, err := p.streamURL()
	if err != nil {
		return nil, err
	}
	sc := p.server.Stream
	return stream.New(stream.Options{
		URL:                  url,
		Tokens:               p.session,
		AuthHeader:           sc.AuthHeader,
		ClientIDHeader:       sc.ClientIDHeader,
		ReconnectDelay:       sc.ReconnectDelay.D(),
		BackoffMultiplier:    sc.BackoffMultiplier,
		MaxReconnectDelay:    sc.MaxReconnectDelay.D(),
		MaxReconnectAttempts: sc.MaxReconnectAttempts,
		HeartbeatInterval:    sc.HeartbeatInterval.D(),
		HeartbeatTimeout:     sc.HeartbeatTimeout.D(),
		InsecureSkipVerify:   p.server.InsecureSkipVerify,
	}), nil
}

func (p *profile) intervals() dashboard.Intervals {
	r := p.server.Refresh
	return dashboard.Intervals{Stats: r.Stats.D(), Alerts: r.Alerts.D(), Full: r.Full.D()}
}

// connector performs the login and starts the push stream plus the
// dashboard polling loops that feed the shared cache.
type connector struct {
	p     *profile
	cache *dashboard.Cache
	log   *zap.SugaredLogger

	mu     sync.Mutex
	stream *stream.Client
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newConnector(p *profile, cache *dashboard.Cache) *connector {
	return &connector{p: p, cache: cache, log: zap.S().Named("connect")}
}

// Connect authenticates and starts background feeds. The push stream is
// best effort: a failed dial is retried by the stream client while polling
// keeps the dashboard current.
func (c *connector) Connect(ctx context.Context) (*internal.Services, error) {
	if err := c.p.authenticate(ctx); err != nil {
		return nil, err
	}

	sc, err := c.p.newStream()
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.stream = sc
	c.cancel = cancel
	c.mu.Unlock()

	// The console's first dashboard load fetches the initial snapshot.
	refresher := dashboard.NewRefresher(dashboard.RefresherParams{
		Service:   c.p.services.Dashboard,
		Cache:     c.cache,
		Intervals: c.p.intervals(),
		PollOnly:  true,
	})
	events := sc.DashboardEvents()
	alerts := sc.MaintenanceAlerts()

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		if err := refresher.Run(runCtx); err != nil {
			c.log.Warnw("dashboard polling stopped", "error", err)
		}
	}()
	go func() {
		defer c.wg.Done()
		defer events.Close()
		defer alerts.Close()
		refresher.Consume(runCtx, events.C, alerts.C)
	}()

	if err := sc.Connect(runCtx); err != nil {
		c.log.Warnw("push stream unavailable, relying on polling", "error", err)
	}
	return c.p.services, nil
}

// States streams the push connection state. Before Connect it reports a
// closed subscription.
func (c *connector) States() *broadcast.Subscription[stream.ConnectionState] {
	c.mu.Lock()
	sc := c.stream
	c.mu.Unlock()
	if sc == nil {
		ch := make(chan stream.ConnectionState)
		close(ch)
		return broadcast.NewSubscription[stream.ConnectionState](ch, func() {})
	}
	return sc.States()
}

// Close stops the feeds and the push stream.
func (c *connector) Close() {
	c.mu.Lock()
	sc, cancel := c.stream, c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if sc != nil {
		sc.Close()
	}
	c.wg.Wait()
}
