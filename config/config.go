package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// SysConfig system level config
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	DemoData bool   `yaml:"demo_data" json:"demo_data"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// GatewayConfig payment gateway (Razorpay compatible) credentials.
// KeySecret doubles as the HMAC shared secret for signature verification.
type GatewayConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	KeyID     string `yaml:"key_id" json:"key_id"`
	KeySecret string `yaml:"key_secret" json:"-"`
	Timeout   int    `yaml:"timeout" json:"timeout"`
}

// JobConfig background job settings. An empty ServiceKey switches the
// daily summary job into simulation mode.
type JobConfig struct {
	ServiceKey  string `yaml:"service_key" json:"-"`
	MaxWorkers  int    `yaml:"max_workers" json:"max_workers"`
	ShopTimeout int    `yaml:"shop_timeout" json:"shop_timeout"`
}

type NotifyConfig struct {
	Channel  string `yaml:"channel" json:"channel"` // log | smtp
	SmtpHost string `yaml:"smtp_host" json:"smtp_host"`
	SmtpPort int    `yaml:"smtp_port" json:"smtp_port"`
	SmtpUser string `yaml:"smtp_user" json:"smtp_user"`
	SmtpPwd  string `yaml:"smtp_pwd" json:"-"`
	From     string `yaml:"from" json:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Gateway  GatewayConfig `yaml:"gateway" json:"gateway"`
	Job      JobConfig     `yaml:"job" json:"job"`
	Notify   NotifyConfig  `yaml:"notify" json:"notify"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "metrics"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Billzio",
		Location: "Asia/Kolkata",
		Workdir:  "/var/billzio",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		JwtSecret: "9b6de5cc-0731-1203-xxtt-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "billzio",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Gateway: GatewayConfig{
		Endpoint: "https://api.razorpay.com",
		Timeout:  10,
	},
	Job: JobConfig{
		MaxWorkers:  8,
		ShopTimeout: 30,
	},
	Notify: NotifyConfig{
		Channel: "log",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/billzio/billzio.log",
	},
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		var ival int
		if _, err := fmt.Sscanf(evalue, "%d", &ival); err == nil {
			*val = ival
		}
	}
}

// LoadConfig loads the YAML config file, falling back to defaults and
// applying BILLZIO_* environment overrides on top.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err != nil {
				panic(err)
			}
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvValue("BILLZIO_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("BILLZIO_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("BILLZIO_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvBoolValue("BILLZIO_SYSTEM_DEMO_DATA", &cfg.System.DemoData)

	setEnvValue("BILLZIO_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("BILLZIO_WEB_PORT", &cfg.Web.Port)
	setEnvValue("BILLZIO_WEB_JWT_SECRET", &cfg.Web.JwtSecret)

	setEnvValue("BILLZIO_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("BILLZIO_DB_PORT", &cfg.Database.Port)
	setEnvValue("BILLZIO_DB_NAME", &cfg.Database.Name)
	setEnvValue("BILLZIO_DB_USER", &cfg.Database.User)
	setEnvValue("BILLZIO_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("BILLZIO_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("BILLZIO_GATEWAY_ENDPOINT", &cfg.Gateway.Endpoint)
	setEnvValue("BILLZIO_GATEWAY_KEY_ID", &cfg.Gateway.KeyID)
	setEnvValue("BILLZIO_GATEWAY_KEY_SECRET", &cfg.Gateway.KeySecret)

	setEnvValue("BILLZIO_JOB_SERVICE_KEY", &cfg.Job.ServiceKey)
	setEnvIntValue("BILLZIO_JOB_MAX_WORKERS", &cfg.Job.MaxWorkers)

	setEnvValue("BILLZIO_NOTIFY_CHANNEL", &cfg.Notify.Channel)
	setEnvValue("BILLZIO_NOTIFY_SMTP_HOST", &cfg.Notify.SmtpHost)
	setEnvIntValue("BILLZIO_NOTIFY_SMTP_PORT", &cfg.Notify.SmtpPort)
	setEnvValue("BILLZIO_NOTIFY_SMTP_USER", &cfg.Notify.SmtpUser)
	setEnvValue("BILLZIO_NOTIFY_SMTP_PWD", &cfg.Notify.SmtpPwd)

	setEnvValue("BILLZIO_LOGGER_MODE", &cfg.Logger.Mode)

	return cfg
}
