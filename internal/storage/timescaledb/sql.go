package timescaledb

const rainStatsSQL = `
SELECT to_char(event_time::date, 'YYYY-MM-DD') AS date, COUNT(*) AS count
FROM rain_events
WHERE event_time::date BETWEEN ? AND ?
GROUP BY event_time::date
ORDER BY event_time::date`
