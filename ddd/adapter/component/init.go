package component

import "giftvideo-service/pkg/manager"

func init() {
	// 注册组件插件
	manager.RegisterComponentPlugin(&JobCreatedConsumerPlugin{})
	manager.RegisterComponentPlugin(&SweepTickerPlugin{})
}
