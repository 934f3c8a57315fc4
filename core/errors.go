package core

import "fmt"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 请求级错误：UNKNOWN_TRACK, VARIANT_NOT_FOUND, UNKNOWN_CLUSTER
//   - 加载期错误：LOAD_FAILED（按变体记录，不致命）
//   - 进程级错误：REGISTRY_EMPTY（唯一致命错误）
type DomainError struct {
	Code    string // 错误代码（如 "UNKNOWN_TRACK"）
	Message string // 错误消息
	Module  string // 模块名称（如 "engine", "registry"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 领域错误代码
	ErrorCodeUnknownTrack    = "UNKNOWN_TRACK"     // 种子轨道在目标变体中不存在
	ErrorCodeVariantNotFound = "VARIANT_NOT_FOUND" // 指定的模型变体未加载
	ErrorCodeUnknownCluster  = "UNKNOWN_CLUSTER"   // 簇 ID 不存在
	ErrorCodeEmptyCandidates = "EMPTY_CANDIDATES"  // 候选集耗尽（非致命，结果为空）
	ErrorCodeLoadFailed      = "LOAD_FAILED"       // 变体加载失败（按变体记录）
	ErrorCodeRegistryEmpty   = "REGISTRY_EMPTY"    // 没有任何可用变体（致命）
)

// 模块名称常量
const (
	ModuleFeature  = "feature"  // 特征存储模块
	ModuleCluster  = "cluster"  // 簇索引模块
	ModuleIndex    = "index"    // 相似度索引模块
	ModuleRegistry = "registry" // 变体注册表模块
	ModuleEngine   = "engine"   // 推荐编排模块
	ModuleBundle   = "bundle"   // 工件加载模块
)

// NewUnknownTrack 创建 UNKNOWN_TRACK 错误，消息中点名违规的轨道 ID。
func NewUnknownTrack(module, id string) *DomainError {
	return NewDomainError(module, ErrorCodeUnknownTrack, fmt.Sprintf("%s: unknown track %q", module, id))
}

// NewVariantNotFound 创建 VARIANT_NOT_FOUND 错误。
func NewVariantNotFound(name string) *DomainError {
	return NewDomainError(ModuleRegistry, ErrorCodeVariantNotFound, fmt.Sprintf("registry: variant %q not found", name))
}

// NewUnknownCluster 创建 UNKNOWN_CLUSTER 错误。
func NewUnknownCluster(module string, id int) *DomainError {
	return NewDomainError(module, ErrorCodeUnknownCluster, fmt.Sprintf("%s: unknown cluster %d", module, id))
}

// 错误检查函数

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsUnknownTrack 检查错误是否为 UNKNOWN_TRACK
func IsUnknownTrack(err error) bool { return hasCode(err, ErrorCodeUnknownTrack) }

// IsVariantNotFound 检查错误是否为 VARIANT_NOT_FOUND
func IsVariantNotFound(err error) bool { return hasCode(err, ErrorCodeVariantNotFound) }

// IsUnknownCluster 检查错误是否为 UNKNOWN_CLUSTER
func IsUnknownCluster(err error) bool { return hasCode(err, ErrorCodeUnknownCluster) }

// IsLoadFailed 检查错误是否为 LOAD_FAILED
func IsLoadFailed(err error) bool { return hasCode(err, ErrorCodeLoadFailed) }

// IsRegistryEmpty 检查错误是否为 REGISTRY_EMPTY
func IsRegistryEmpty(err error) bool { return hasCode(err, ErrorCodeRegistryEmpty) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }
