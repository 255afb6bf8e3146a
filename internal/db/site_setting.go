package db

// SiteSetting 存储站点级的键值对配置。
type SiteSetting struct {
	Key   string `gorm:"column:key;primaryKey" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

// TableName 自定义表名以保持命名一致。
func (SiteSetting) TableName() string {
	return "site_settings"
}

const (
	// SettingKeySiteTitle 表示站点名称。
	SettingKeySiteTitle = "site_title"
	// SettingKeySiteDescription 表示站点描述。
	SettingKeySiteDescription = "site_description"
	// SettingKeySiteURL 表示站点地址。
	SettingKeySiteURL = "site_url"
)
