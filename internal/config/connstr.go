package config

import (
	"fmt"
	"strings"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

func MakeConnStr(conf Database) (string, error) {
	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", fmt.Errorf("loading db host: %w", err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return "", fmt.Errorf("loading db user: %w", err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Password)
	if err != nil {
		return "", fmt.Errorf("loading db password: %w", err)
	}

	connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s",
		host, user, string(password), conf.Name, conf.Port)
	if conf.SSLMode != "" {
		connStr += " sslmode=" + conf.SSLMode
	}

	return connStr, nil
}

// ValKeyCredentials resolves the address and credentials of the valkey server.
func ValKeyCredentials(conf ValKey) (host, user, password string, _ error) {
	hostVal, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey host: %w", err)
	}

	userVal, err := loadOptional(conf.User)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey username: %w", err)
	}

	passwordVal, err := loadOptional(conf.Password)
	if err != nil {
		return "", "", "", fmt.Errorf("loading valkey password: %w", err)
	}

	return strings.TrimSpace(string(hostVal)), string(userVal), string(passwordVal), nil
}

// loadOptional treats an unset reference as an empty value.
func loadOptional(ref commoncfg.SourceRef) ([]byte, error) {
	if ref.Source == "" && ref.Value == "" {
		return nil, nil
	}

	return commoncfg.LoadValueFromSourceRef(ref)
}
