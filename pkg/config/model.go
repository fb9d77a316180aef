package config

import "time"

type (

	// Config конфигурация программы
	Config struct {

		// Описание логирования
		Log struct {

			// Путь к файлу лога
			Path string

			// Имя файла логирования
			Filename string `required:"true" default:"attendance.log"`

			// Уровень логирования
			Level string `required:"true" default:"info"`

			// Выводить лог только на консоль
			Console bool `default:"false"`
		}

		// Файлы хранилищ
		Store struct {

			// Список зарегистрированных карт (uid,name,roll)
			Students string `conform:"trim" validate:"required" default:"students.csv"`

			// Журнал посещений (timestamp,uid,name,roll,status)
			Attendance string `conform:"trim" validate:"required" default:"attendance.csv"`
		}

		// Фотопрерыватель в щели для карты
		Sensor struct {

			// Имя вывода GPIO (нумерация BCM)
			Pin string `conform:"trim" validate:"required" default:"GPIO17"`

			// Интервал опроса датчика (в миллисекундах)
			PollInterval time.Duration `default:"20"`

			// Окно подавления дребезга (в миллисекундах)
			Debounce time.Duration `default:"350"`

			// Длительность калибровки уровня покоя (в миллисекундах)
			CalibrateWindow time.Duration `default:"600"`

			// Интервал выборки при калибровке (в миллисекундах)
			CalibrateInterval time.Duration `default:"20"`
		}

		// Зуммер
		Buzzer struct {

			// Имя вывода GPIO (нумерация BCM)
			Pin string `conform:"trim" validate:"required" default:"GPIO18"`

			// Сигнал при поднесении карты: длительность звука и паузы (в миллисекундах)
			BeepOn  time.Duration `default:"120"`
			BeepOff time.Duration `default:"80"`

			// Сигнал для незарегистрированной карты (в миллисекундах)
			AlertOn  time.Duration `default:"80"`
			AlertOff time.Duration `default:"50"`
		}

		// Символьный дисплей 16x2 на I2C расширителе PCF8574
		Lcd struct {

			// Имя шины I2C (пусто - первая доступная)
			Bus string `conform:"trim"`

			// Адрес на шине (0x27)
			Address uint16 `default:"39"`
		}

		// RFID считыватель
		Reader struct {

			// Тип считывателя: mfrc522 (SPI) или serial (UART, формат RDM6300)
			Type string `conform:"trim,lower" validate:"oneof=mfrc522 serial" default:"mfrc522"`

			// Порт SPI (пусто - первый доступный)
			Spi string `conform:"trim"`

			// Вывод сброса MFRC522
			ResetPin string `conform:"trim" default:"GPIO25"`

			// Вывод прерывания MFRC522 (IRQ должен быть подключён)
			IrqPin string `conform:"trim" validate:"required" default:"GPIO24"`

			// Последовательный порт
			Device string `conform:"trim" default:"/dev/serial0"`

			// Скорость последовательного порта
			Baud int `default:"9600"`
		}

		// Время показа сообщений на дисплее (в миллисекундах)
		Display struct {
			Welcome time.Duration `default:"1000"`
			Name    time.Duration `default:"1200"`
			Roll    time.Duration `default:"1200"`
			Unknown time.Duration `default:"1200"`
			Address time.Duration `default:"3000"`

			// Экран "Starting...", если адрес не найден
			Starting time.Duration `default:"1000"`

			// Экран "Initializing..." перед калибровкой датчика
			Initializing time.Duration `default:"600"`
		}

		// Поиск локального IP-адреса для показа при старте
		Network struct {

			// Количество попыток
			Attempts int `default:"30"`

			// Интервал между попытками (в миллисекундах)
			Interval time.Duration `default:"500"`
		}
	}
)
