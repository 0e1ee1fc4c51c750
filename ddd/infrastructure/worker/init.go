package worker

import "giftvideo-service/pkg/manager"

func init() {
	// 注册Worker组件插件
	manager.RegisterComponentPlugin(&ComposeWorkerComponentPlugin{})
}
