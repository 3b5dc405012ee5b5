package domain

import "errors"

// 跨层使用的哨兵错误，HTTP 边界据此映射到各自的错误码。
// NotFound 各变体保持独立，禁止折叠成一个通用 404。
var (
	// ErrServerNotFound 服务器身份不存在
	ErrServerNotFound = errors.New("server not found")

	// ErrConfigNotFound 配置文档不存在
	ErrConfigNotFound = errors.New("config not found")

	// ErrVersionNotFound 指定版本快照不存在（从未创建或已被裁剪）
	ErrVersionNotFound = errors.New("config version not found")

	// ErrMappingNotFound 映射不存在
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrWipeNotFound 服务器没有已登记的 wipe
	ErrWipeNotFound = errors.New("wipe not found")

	// ErrScheduleNotFound 排期不存在
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrNoLiveConfig 服务器已知，但没有任何已发布且 live 的映射
	// （与 ErrServerNotFound 区分，二者是不同的运维故障）
	ErrNoLiveConfig = errors.New("no live config for server")

	// ErrNoApplicableMapping 候选映射存在但没有一条适用
	// （elapsed 未定义且无 base 映射）——绝不静默挑一条兜底
	ErrNoApplicableMapping = errors.New("no applicable mapping")

	// ErrPublishedVersionMissing published_version 指向的快照缺失
	// （裁剪 bug 或数据损坏）——宁可报错也不返回半截/陈旧数据
	ErrPublishedVersionMissing = errors.New("published version snapshot missing")

	// ErrPublishedVersionPruned 裁剪逻辑试图删除已发布版本，属编程错误
	ErrPublishedVersionPruned = errors.New("refusing to prune published version")

	// ErrDuplicateWipeNumber (server_id, wipe_number) 重复注册
	ErrDuplicateWipeNumber = errors.New("duplicate wipe number")

	// ErrDuplicateScheduleSlot 同一服务器活跃排期的 (day,hour,minute) 冲突
	ErrDuplicateScheduleSlot = errors.New("duplicate schedule slot")

	// ErrDuplicateBaseMapping 同一 (server, config_type) 已存在 live 的 base 映射
	ErrDuplicateBaseMapping = errors.New("duplicate live base mapping")

	// ErrNoSchedule 服务器没有任何活跃排期
	ErrNoSchedule = errors.New("no active schedule")

	// ErrUnauthorized 鉴权失败
	ErrUnauthorized = errors.New("unauthorized")
)
