// Package config provides network and milestone configuration for the
// admission node.
package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DynamicFeeConfig controls dynamic-fee classification for a milestone.
type DynamicFeeConfig struct {
	Enabled         bool              `mapstructure:"enabled" json:"enabled"`
	MinFeePool      uint64            `mapstructure:"minFeePool" json:"minFeePool"`           // satoshi per byte
	MinFeeBroadcast uint64            `mapstructure:"minFeeBroadcast" json:"minFeeBroadcast"` // satoshi per byte
	AddonBytes      map[string]uint32 `mapstructure:"addonBytes" json:"addonBytes"`           // 타입별 추가 바이트
}

// Milestone is a configuration epoch keyed by block height.
type Milestone struct {
	Height      uint32           `mapstructure:"height" json:"height"`
	BlockTime   uint32           `mapstructure:"blocktime" json:"blocktime"` // seconds
	DynamicFees DynamicFeeConfig `mapstructure:"dynamicFees" json:"dynamicFees"`
}

// NetworkParams identifies the active network.
type NetworkParams struct {
	Name       string    `mapstructure:"name" json:"name"`
	PubKeyHash uint8     `mapstructure:"pubKeyHash" json:"pubKeyHash"` // address version byte
	Epoch      time.Time `mapstructure:"epoch" json:"epoch"`           // slot 0 기준 시각
}

// AdmissionOptions are the processor's recognised options.
type AdmissionOptions struct {
	MaxTransactionBytes uint32 `mapstructure:"maxTransactionBytes" json:"maxTransactionBytes"`
	MaxTransactionAge   uint32 `mapstructure:"maxTransactionAge" json:"maxTransactionAge"` // blocks
}

// Manager holds the network parameters and the milestone table.
// 마일스톤은 height 오름차순으로 유지됨
type Manager struct {
	network    NetworkParams
	milestones []Milestone
}

// NewManager creates a Manager. Milestones are sorted by height; at least
// one milestone at height 1 or below is required.
func NewManager(network NetworkParams, milestones []Milestone) (*Manager, error) {
	if len(milestones) == 0 {
		return nil, ErrNoMilestones
	}
	sorted := make([]Milestone, len(milestones))
	copy(sorted, milestones)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Height < sorted[j].Height
	})
	if sorted[0].Height > 1 {
		return nil, ErrNoGenesisMilestone
	}
	return &Manager{network: network, milestones: sorted}, nil
}

// GetMilestone returns the active milestone for a height.
// height보다 작거나 같은 것 중 가장 높은 마일스톤
func (m *Manager) GetMilestone(height uint32) Milestone {
	active := m.milestones[0]
	for _, ms := range m.milestones {
		if ms.Height > height {
			break
		}
		active = ms
	}
	return active
}

// PubKeyHash returns the network's address version byte.
func (m *Manager) PubKeyHash() uint8 {
	return m.network.PubKeyHash
}

// Network returns the network parameters.
func (m *Manager) Network() NetworkParams {
	return m.network
}

// fileConfig is the on-disk shape loaded by viper.
type fileConfig struct {
	Network    NetworkParams    `mapstructure:"network"`
	Milestones []Milestone      `mapstructure:"milestones"`
	Admission  AdmissionOptions `mapstructure:"admission"`
}

// Load reads a config file (yaml/json/toml) with viper and builds a Manager
// plus admission options. Environment variables prefixed ADMISSION_ override
// file values.
func Load(path string) (*Manager, AdmissionOptions, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("ADMISSION")
	v.AutomaticEnv()

	// 디폴트 값
	v.SetDefault("admission.maxTransactionBytes", DefaultMaxTransactionBytes)
	v.SetDefault("admission.maxTransactionAge", DefaultMaxTransactionAge)

	if err := v.ReadInConfig(); err != nil {
		return nil, AdmissionOptions{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var fc fileConfig
	// epoch 같은 RFC3339 문자열을 time.Time으로 디코드
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&fc, hook); err != nil {
		return nil, AdmissionOptions{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	mgr, err := NewManager(fc.Network, fc.Milestones)
	if err != nil {
		return nil, AdmissionOptions{}, err
	}
	return mgr, fc.Admission, nil
}

// Defaults for admission options.
const (
	DefaultMaxTransactionBytes uint32 = 2 * 1024 * 1024
	DefaultMaxTransactionAge   uint32 = 2700
)

// Custom errors
type configError string

func (e configError) Error() string {
	return string(e)
}

const (
	ErrNoMilestones       = configError("at least one milestone is required")
	ErrNoGenesisMilestone = configError("a milestone at height 1 or below is required")
)
