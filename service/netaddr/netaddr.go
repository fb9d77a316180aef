package netaddr

import (
	"context"
	"io/ioutil"
	"net"
	"strings"
	"time"

	"github.com/kirsrus/attendance/pkg/tool"
	"github.com/kirsrus/attendance/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	attempts = 30
	interval = 500 * time.Millisecond
)

// PrivatePrefixes префиксы адресов частных сетей, которые показываются на дисплее
var PrivatePrefixes = []string{
	"192.", "10.",
	"172.16.", "172.17.", "172.18.", "172.19.", "172.20.", "172.21.", "172.22.", "172.23.",
	"172.24.", "172.25.", "172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
}

// Interfaces IPv4 адреса сетевых интерфейсов хоста. Имплементирует service.AddressSource
type Interfaces struct{}

// Addresses адреса всех интерфейсов
func (Interfaces) Addresses() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, errors.Trace(err)
	}
	res := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			res = append(res, ip.String())
		}
	}
	return res, nil
}

// Match первый адрес из addrs в частной сети
func Match(addrs []string) (string, bool) {
	for _, addr := range addrs {
		for _, prefix := range PrivatePrefixes {
			if strings.HasPrefix(addr, prefix) {
				return addr, true
			}
		}
	}
	return "", false
}

// Discovery поиск локального адреса с повторами. Инициируется через NewDiscovery
type Discovery struct {
	log      *logrus.Entry
	source   service.AddressSource
	clock    tool.Clock
	attempts int
	interval time.Duration
}

// ConfigDiscovery конфигурация Discovery
type ConfigDiscovery struct {
	Log *logrus.Logger
	// Источник адресов (по умолчанию Interfaces)
	Source service.AddressSource
	Clock  tool.Clock

	Attempts int
	Interval time.Duration
}

// NewDiscovery конструктор Discovery
func NewDiscovery(config *ConfigDiscovery) (*Discovery, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	res := &Discovery{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "netaddr",
			"scope":  "service",
		}),
		source:   config.Source,
		clock:    config.Clock,
		attempts: attempts,
		interval: interval,
	}
	if res.source == nil {
		res.source = Interfaces{}
	}
	if res.clock == nil {
		res.clock = tool.SystemClock{}
	}
	if config.Attempts != 0 {
		res.attempts = config.Attempts
	}
	if config.Interval != 0 {
		res.interval = config.Interval
	}
	return res, nil
}

// Discover ищет адрес в частной сети. После каждой неудачной попытки выжидает интервал.
// Отсутствие адреса ошибкой не считается (found=false); ошибка возвращается только при отмене ctx
func (m *Discovery) Discover(ctx context.Context) (addr string, found bool, err error) {
	for i := 0; i < m.attempts; i++ {
		addrs, err := m.source.Addresses()
		if err != nil {
			m.log.Debugf("попытка %d: ошибка получения адресов: %v", i+1, err)
		} else if addr, ok := Match(addrs); ok {
			m.log.Infof("локальный адрес %s", addr)
			return addr, true, nil
		}
		if err := m.clock.Sleep(ctx, m.interval); err != nil {
			return "", false, err
		}
	}
	m.log.Warnf("адрес в частной сети не найден за %d попыток", m.attempts)
	return "", false, nil
}
