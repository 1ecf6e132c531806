// Package json 统一项目内的 JSON 实现，基于 bytedance/sonic 的标准库兼容配置。
package json

import (
	"github.com/bytedance/sonic"
)

var (
	json = sonic.ConfigStd

	Marshal       = json.Marshal
	Unmarshal     = json.Unmarshal
	MarshalIndent = json.MarshalIndent
	Valid         = json.Valid
)
