package config

import (
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --api-target
// on "ragchat chat", "ragchat ask" and "ragchat upload").
type Flag struct {
	// Name is the long flag name (e.g. "api-target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "a"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.api_target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPITarget     = "api-target"
	FlagTimeout       = "timeout"
	FlagIdleTimeout   = "idle-timeout"
	FlagFallback      = "fallback-message"
	FlagMarkdown      = "markdown"
	FlagWorkers       = "workers"
	FlagListen        = "listen"
	FlagSQLite        = "sqlite"
	FlagTokenDelay    = "token-delay"
	FlagEventProvider = "events-provider"
	FlagEventBrokers  = "events-brokers"
	FlagEventTopic    = "events-topic"
)

// Flags is the registry shared by every ragchat command.
var Flags = FlagSet{
	FlagAPITarget:     {Name: "api-target", Shorthand: "a", ViperKey: "client.api_target", Description: "Chat backend base URL, including the /api prefix"},
	FlagTimeout:       {Name: "timeout", ViperKey: "client.timeout", Description: "Timeout for non-streaming backend requests"},
	FlagIdleTimeout:   {Name: "idle-timeout", ViperKey: "chat.idle_timeout", Description: "Abort a stream that stays silent this long (0 disables)"},
	FlagFallback:      {Name: "fallback-message", ViperKey: "chat.fallback_message", Description: "Reply shown when a send fails before any text arrives"},
	FlagMarkdown:      {Name: "markdown", ViperKey: "chat.markdown", Description: "Render answers as markdown"},
	FlagWorkers:       {Name: "workers", Shorthand: "w", ViperKey: "upload.workers", Description: "Concurrent uploads in watch mode"},
	FlagListen:        {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address for the stand-in backend to listen on"},
	FlagSQLite:        {Name: "sqlite", Shorthand: "s", ViperKey: "server.sqlite_path", Description: "SQLite database path for the stand-in backend (empty for in-memory)"},
	FlagTokenDelay:    {Name: "token-delay", ViperKey: "server.token_delay", Description: "Delay between streamed tokens"},
	FlagEventProvider: {Name: "events-provider", ViperKey: "events.provider", Description: "Turn event publisher (nop, kafka)"},
	FlagEventBrokers:  {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
	FlagEventTopic:    {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for turn events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	addFlag(cmd, fs, key, target, cmd.Flags().StringVarP, (*viper.Viper).GetString)
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	addFlag(cmd, fs, key, target, cmd.Flags().UintVarP, (*viper.Viper).GetUint)
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	addFlag(cmd, fs, key, target, cmd.Flags().BoolVarP, (*viper.Viper).GetBool)
}

func addFlag[T any](
	cmd *cobra.Command,
	fs FlagSet,
	key string,
	target *T,
	varP func(p *T, name, shorthand string, value T, usage string),
	get func(v *viper.Viper, key string) T,
) {
	def, ok := fs[key]
	if !ok {
		return
	}
	varP(target, def.Name, def.Shorthand, get(defaults(), def.ViperKey), def.Description)
}

// defaults holds NewDefaultConfig() under dotted keys for flag registration.
var defaults = sync.OnceValue(func() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
})

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}

		if f := cmd.Flags().Lookup(def.Name); f != nil {
			_ = v.BindPFlag(def.ViperKey, f)
		}
	}
}
