package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameModule      = "module"
	FieldNameComponent   = "component"
	FieldNameContentType = "contentType"
	FieldNameCodecTag    = "codecTag"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldContentType 返回一个包含文档格式的 zap 字段。
func FieldContentType(contentType string) zap.Field {
	return zap.String(FieldNameContentType, contentType)
}

// FieldCodecTag 返回一个包含编解码策略标签的 zap 字段。
func FieldCodecTag(tag string) zap.Field {
	return zap.String(FieldNameCodecTag, tag)
}
