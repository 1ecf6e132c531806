package viper

import (
	"path/filepath"
	"strings"

	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
// 设置了环境变量前缀后，PREFIX_SECTION_KEY 形式的变量覆盖文件中的 section.key。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。未加载文件时只有默认值和环境变量生效。
func New() *Config {
	return &Config{
		v: spfviper.New(),
	}
}

// SetEnvPrefix 开启环境变量覆盖，key 中的 "." 与 "-" 均映射为 "_"。
func (c *Config) SetEnvPrefix(prefix string) {
	c.v.SetEnvPrefix(prefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()
}

// SetDefault 设置 key 的默认值。viper 仅对已知 key 做环境变量覆盖，
// 因此需要被环境变量覆盖的 key 应先设置默认值。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		c.v.SetConfigType("yaml")
	case ".json":
		c.v.SetConfigType("json")
	default:
		// 让 viper 自行推断类型，或在读取时返回清晰的错误信息。
	}

	return c.v.ReadInConfig()
}

// IsSet 报告 key 是否在文件、默认值或环境变量中出现。
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Unmarshal 将完整配置反序列化到 dst，dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst interface{}) error {
	return c.v.Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
func (c *Config) UnmarshalKey(key string, dst interface{}) error {
	return c.v.UnmarshalKey(key, dst)
}
