package sensor

// FakeClimate is a scripted Climate for tests.
type FakeClimate struct {
	Reading  ClimateReading
	Ready    bool
	Err      error
	Calls    int
	NotReady int // initial DataReady calls that report false
}

// NewFakeClimate returns a ready FakeClimate reporting r.
func NewFakeClimate(r ClimateReading) *FakeClimate {
	return &FakeClimate{Reading: r, Ready: true}
}

func (f *FakeClimate) DataReady() bool {
	if f.NotReady > 0 {
		f.NotReady--
		return false
	}
	return f.Ready
}

func (f *FakeClimate) Sense() (ClimateReading, error) {
	f.Calls++
	if f.Err != nil {
		return ClimateReading{}, f.Err
	}
	return f.Reading, nil
}

// FakeAirQuality is a scripted AirQuality for tests.
type FakeAirQuality struct {
	Reading     AirReading
	Ready       bool
	Err         error
	Calls       int
	BaselineVal uint16
	BaselineErr error
	SetErr      error
	Restored    []uint16
	EnvTempC    float64
	EnvHumidity float64
	EnvUpdates  int
	NotReady    int
}

// NewFakeAirQuality returns a ready FakeAirQuality reporting r.
func NewFakeAirQuality(r AirReading) *FakeAirQuality {
	return &FakeAirQuality{Reading: r, Ready: true}
}

func (f *FakeAirQuality) DataReady() bool {
	if f.NotReady > 0 {
		f.NotReady--
		return false
	}
	return f.Ready
}

func (f *FakeAirQuality) Sense() (AirReading, error) {
	f.Calls++
	if f.Err != nil {
		return AirReading{}, f.Err
	}
	return f.Reading, nil
}

func (f *FakeAirQuality) Baseline() (uint16, error) {
	if f.BaselineErr != nil {
		return 0, f.BaselineErr
	}
	return f.BaselineVal, nil
}

func (f *FakeAirQuality) SetBaseline(v uint16) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Restored = append(f.Restored, v)
	f.BaselineVal = v
	return nil
}

func (f *FakeAirQuality) SetEnvironment(temperatureC, humidityPct float64) error {
	f.EnvTempC = temperatureC
	f.EnvHumidity = humidityPct
	f.EnvUpdates++
	return nil
}
