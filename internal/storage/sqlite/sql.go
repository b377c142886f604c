package sqlite

const insertForecastSQL = `INSERT INTO forecasts (date, wind, temp_min, temp_max, weather, created_at) VALUES (?, ?, ?, ?, ?, ?)`

const queryForecastsSQL = `
SELECT date, wind, temp_min, temp_max, weather
FROM forecasts
WHERE date BETWEEN ? AND ?
ORDER BY date, id`

const insertMetarSQL = `
INSERT INTO metars (
	batch_id, obs_time, station, raw,
	wind_dir, wind_variable, wind_speed, wind_gust,
	visibility, temp, dewpoint,
	weather, rain_flag, rain_level, clouds, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const recentMetarsSQL = `
SELECT batch_id, obs_time, station, raw,
	wind_dir, wind_variable, wind_speed, wind_gust,
	visibility, temp, dewpoint,
	weather, rain_flag, rain_level, clouds, created_at
FROM metars
ORDER BY created_at DESC, id DESC
LIMIT ?`

const insertRainSQL = `INSERT INTO rain_events (event_time, rain_level, rain_code, note, created_at) VALUES (?, ?, ?, ?, ?)`

const queryRainSQL = `
SELECT id, event_time, rain_level, rain_code, note
FROM rain_events
WHERE date(event_time) BETWEEN ? AND ?
ORDER BY event_time, id`

const rainStatsSQL = `
SELECT date(event_time), COUNT(*)
FROM rain_events
WHERE date(event_time) BETWEEN ? AND ?
GROUP BY date(event_time)
ORDER BY date(event_time)`

const insertRunwaySQL = `INSERT INTO runway_states (event_time, state, note, created_at) VALUES (?, ?, ?, ?)`

const queryRunwaySQL = `
SELECT id, event_time, state, note
FROM runway_states
WHERE date(event_time) BETWEEN ? AND ?
ORDER BY event_time, id`
