// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// serdeNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	serdeNamespace = "serde"

	codecTagLabelName    = "tag"
	opLabelName          = "op"
	contentTypeLabelName = "content_type"

	OpEncode    = "encode"
	OpDecode    = "decode"
	OpSerialize = "serialize"
	OpParse     = "parse"
)

var (
	// sizeBuckets 为文档大小的桶划分，单位为字节。
	// [64 256 1024 4096 16384 65536 262144 1.048576e+06 4.194304e+06 1.6777216e+07]
	sizeBuckets = prometheus.ExponentialBuckets(64, 4, 10)

	CodecOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "codec_operations_total",
			Help:      "number of encode/decode calls handled by a codec strategy",
		}, []string{codecTagLabelName, opLabelName})

	CodecFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Name:      "codec_failures_total",
			Help:      "number of codec strategy calls that returned an error",
		}, []string{codecTagLabelName, opLabelName})

	DocumentBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serdeNamespace,
			Name:      "document_bytes",
			Help:      "size of serialized or parsed documents",
			Buckets:   sizeBuckets,
		}, []string{contentTypeLabelName, opLabelName})

	metricRegisterer prometheus.Registerer
	registerOnce     sync.Once
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// GetGatherer 返回与 GetRegisterer 对应的 Gatherer，用于导出已采集的指标。
func GetGatherer() prometheus.Gatherer {
	if g, ok := GetRegisterer().(prometheus.Gatherer); ok {
		return g
	}
	return prometheus.DefaultGatherer
}

// Register 注册当前定义的所有指标，重复调用只有第一次生效。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(CodecOperations)
		r.MustRegister(CodecFailures)
		r.MustRegister(DocumentBytes)
		metricRegisterer = r
	})
}

// ObserveCodec 记录一次编解码策略调用，err 非空时同时计入失败次数。
func ObserveCodec(tag, op string, err error) {
	CodecOperations.WithLabelValues(tag, op).Inc()
	if err != nil {
		CodecFailures.WithLabelValues(tag, op).Inc()
	}
}

// ObserveDocument 记录一次文档序列化或解析的字节数。
func ObserveDocument(contentType, op string, size int) {
	DocumentBytes.WithLabelValues(contentType, op).Observe(float64(size))
}
