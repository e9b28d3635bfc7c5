package channel

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"lull/internal/config"
	"lull/internal/event"
	"lull/internal/logger"
)

const maxMessageLength = 2000

// DiscordChannel adapts a Discord gateway session to the Channel interface.
// A mention of the bot or a DM marks the message as a direct address; thread
// messages are scoped under their parent channel.
type DiscordChannel struct {
	session *discordgo.Session
	limiter *rate.Limiter
	logger  logger.Logger

	mu      sync.RWMutex
	handler InboundHandler
	botID   string
	running bool
}

func NewDiscordChannel(cfg config.DiscordConfig, delivery config.DeliveryConfig, log logger.Logger) (*DiscordChannel, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsDirectMessages

	ratePerSecond := delivery.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	burst := delivery.Burst
	if burst <= 0 {
		burst = 1
	}

	return &DiscordChannel{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  log,
	}, nil
}

// OnInbound registers the handler invoked for every received message. Must be
// called before Start.
func (c *DiscordChannel) OnInbound(handler InboundHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	botUser, err := c.session.User("@me")
	if err != nil {
		_ = c.session.Close()
		return fmt.Errorf("failed to resolve bot user: %w", err)
	}

	c.mu.Lock()
	c.botID = botUser.ID
	c.running = true
	c.mu.Unlock()

	c.logger.Infow("discord gateway connected",
		"username", botUser.Username,
		"user_id", botUser.ID,
	)
	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

// Healthy reports gateway liveness for the health endpoint.
func (c *DiscordChannel) Healthy(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.running {
		return fmt.Errorf("discord gateway not connected")
	}
	return nil
}

// Send delivers content to the scope's conversation, rate-limited and split
// into platform-sized chunks.
func (c *DiscordChannel) Send(ctx context.Context, scope event.Scope, content string) error {
	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()
	if !running {
		return fmt.Errorf("discord gateway not connected")
	}

	targetID := scope.ChannelID
	if scope.ThreadID != "" {
		targetID = scope.ThreadID
	}

	for _, chunk := range splitMessage(content, maxMessageLength) {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("delivery rate limit wait canceled: %w", err)
		}
		if _, err := c.session.ChannelMessageSend(targetID, chunk); err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
	}
	return nil
}

func (c *DiscordChannel) ListConversations(ctx context.Context) ([]ConversationInfo, error) {
	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()
	if !running {
		return nil, fmt.Errorf("discord gateway not connected")
	}

	var infos []ConversationInfo
	for _, guild := range c.session.State.Guilds {
		for _, ch := range guild.Channels {
			if ch.Type != discordgo.ChannelTypeGuildText {
				continue
			}
			infos = append(infos, ConversationInfo{
				Scope: event.Scope{ChannelID: ch.ID},
				Name:  ch.Name,
			})
		}
	}
	return infos, nil
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	c.mu.RLock()
	handler := c.handler
	botID := c.botID
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	msg := InboundMessage{
		Scope:         c.scopeFor(m),
		SenderID:      m.Author.ID,
		SenderName:    m.Author.Username,
		Content:       content,
		DirectAddress: c.isDirectAddress(m, botID),
		Timestamp:     m.Timestamp,
	}

	if err := handler(context.Background(), msg); err != nil {
		c.logger.Errorw("inbound message handling failed",
			"scope", msg.Scope.String(),
			"sender_id", msg.SenderID,
			"error", err,
		)
	}
}

// scopeFor maps a message onto its conversation scope. Thread messages are
// keyed under the parent channel with the thread as the secondary component.
func (c *DiscordChannel) scopeFor(m *discordgo.MessageCreate) event.Scope {
	ch, err := c.session.State.Channel(m.ChannelID)
	if err == nil && ch.IsThread() {
		return event.Scope{ChannelID: ch.ParentID, ThreadID: ch.ID}
	}
	return event.Scope{ChannelID: m.ChannelID}
}

func (c *DiscordChannel) isDirectAddress(m *discordgo.MessageCreate, botID string) bool {
	// DMs are always direct.
	if m.GuildID == "" {
		return true
	}
	for _, user := range m.Mentions {
		if user.ID == botID {
			return true
		}
	}
	return false
}

// splitMessage cuts content into chunks of at most limit bytes, breaking on
// newlines where possible.
func splitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	for len(content) > limit {
		cut := strings.LastIndex(content[:limit], "\n")
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, strings.TrimRight(content[:cut], "\n"))
		content = strings.TrimLeft(content[cut:], "\n")
	}
	if content != "" {
		chunks = append(chunks, content)
	}
	return chunks
}
