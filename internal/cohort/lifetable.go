package cohort

import (
	"math"

	"stroke-mcs/internal/patient"
)

// EndAge is the age at which the cohort simulation stops.
const EndAge = 100

// lifeTable holds the annual probability of death q(x) for ages 0-100, smoothed from a US period
// life table by log-linear interpolation between five-year anchor ages.
var lifeTable = map[patient.Sex][EndAge + 1]float64{
	patient.Male: {
		0.006410, 0.000440, 0.000330, 0.000248, 0.000186, 0.000140, 0.000133, 0.000127, 0.000121, 0.000115, // 0-9
		0.000110, 0.000142, 0.000184, 0.000239, 0.000309, 0.000400, 0.000498, 0.000621, 0.000773, 0.000963, // 10-19
		0.001200, 0.001238, 0.001276, 0.001316, 0.001357, 0.001400, 0.001419, 0.001439, 0.001459, 0.001479, // 20-29
		0.001500, 0.001556, 0.001613, 0.001673, 0.001736, 0.001800, 0.001890, 0.001985, 0.002085, 0.002190, // 30-39
		0.002300, 0.002487, 0.002689, 0.002908, 0.003144, 0.003400, 0.003702, 0.004030, 0.004387, 0.004776, // 40-49
		0.005200, 0.005654, 0.006147, 0.006683, 0.007266, 0.007900, 0.008471, 0.009084, 0.009741, 0.010445, // 50-59
		0.011200, 0.011998, 0.012853, 0.013768, 0.014749, 0.015800, 0.017076, 0.018456, 0.019947, 0.021558, // 60-69
		0.023300, 0.025361, 0.027605, 0.030048, 0.032706, 0.035600, 0.039196, 0.043156, 0.047515, 0.052315, // 70-79
		0.057600, 0.063662, 0.070363, 0.077768, 0.085953, 0.095000, 0.105307, 0.116733, 0.129398, 0.143437, // 80-89
		0.159000, 0.174753, 0.192068, 0.211097, 0.232013, 0.255000, 0.273208, 0.292715, 0.313616, 0.336008, // 90-99
		0.360000,                                                                                           // 100
	},
	patient.Female: {
		0.005370, 0.000400, 0.000290, 0.000210, 0.000152, 0.000110, 0.000106, 0.000102, 0.000098, 0.000094, // 0-9
		0.000090, 0.000105, 0.000121, 0.000141, 0.000164, 0.000190, 0.000221, 0.000256, 0.000297, 0.000345, // 10-19
		0.000400, 0.000418, 0.000437, 0.000457, 0.000478, 0.000500, 0.000524, 0.000548, 0.000574, 0.000602, // 20-29
		0.000630, 0.000669, 0.000710, 0.000754, 0.000801, 0.000850, 0.000917, 0.000989, 0.001066, 0.001150, // 30-39
		0.001240, 0.001348, 0.001465, 0.001592, 0.001730, 0.001880, 0.002052, 0.002239, 0.002443, 0.002667, // 40-49
		0.002910, 0.003140, 0.003389, 0.003658, 0.003947, 0.004260, 0.004599, 0.004966, 0.005362, 0.005789, // 50-59
		0.006250, 0.006819, 0.007439, 0.008116, 0.008854, 0.009660, 0.010563, 0.011550, 0.012629, 0.013809, // 60-69
		0.015100, 0.016616, 0.018283, 0.020119, 0.022138, 0.024360, 0.026954, 0.029824, 0.032999, 0.036512, // 70-79
		0.040400, 0.045172, 0.050507, 0.056472, 0.063142, 0.070600, 0.079145, 0.088725, 0.099464, 0.111504, // 80-89
		0.125000, 0.139321, 0.155282, 0.173072, 0.192900, 0.215000, 0.234236, 0.255193, 0.278025, 0.302900, // 90-99
		0.330000,                                                                                           // 100
	},
}

// Mortality is the base annual probability of death. Ages outside the table are clamped.
func Mortality(sex patient.Sex, age int) float64 {
	age = max(0, min(age, EndAge))
	return lifeTable[sex][age]
}

// AdjustedMortality scales the mortality rate by a hazard ratio: 1 - (1-q)^hr.
func AdjustedMortality(sex patient.Sex, age int, hazardRatio float64) float64 {
	q := Mortality(sex, age)
	return 1 - math.Pow(1-q, hazardRatio)
}
